package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/lona-agency/trading-cli/internal/platform"
)

func TestClassifyAPIError(t *testing.T) {
	err := &platform.APIError{
		HTTPStatus: 422,
		Message:    "policy rejected",
		Code:       "invalid_policy",
		RequestID:  "req-remote-1",
		Details:    json.RawMessage(`{"field":"policy"}`),
	}

	env := Classify(err)
	if env.Status != "error" || env.Message != "policy rejected" {
		t.Errorf("env = %+v", env)
	}
	if env.Code != "invalid_policy" || env.RequestID != "req-remote-1" || env.HTTPStatus != 422 {
		t.Errorf("env = %+v", env)
	}
	if string(env.Details) != `{"field":"policy"}` {
		t.Errorf("Details = %s", env.Details)
	}
}

func TestClassifyWrappedAPIError(t *testing.T) {
	inner := &platform.APIError{HTTPStatus: 500, Message: "boom"}
	env := Classify(fmt.Errorf("create run: %w", inner))
	if env.HTTPStatus != 500 || env.Message != "boom" {
		t.Errorf("wrapped APIError not unwrapped: %+v", env)
	}
}

func TestClassifyValidationErrorHasNoHTTPStatus(t *testing.T) {
	err := &platform.ValidationError{
		Field:   "--strategy-id",
		Message: "--strategy-id is required when --input is not provided.",
	}

	env := Classify(err)
	if env.HTTPStatus != 0 {
		t.Errorf("validation error must not carry httpStatus: %+v", env)
	}
	if !strings.Contains(env.Message, "--strategy-id") {
		t.Errorf("Message = %q, should name the field", env.Message)
	}

	// The serialized form must omit httpStatus entirely.
	data, err2 := json.Marshal(env)
	if err2 != nil {
		t.Fatal(err2)
	}
	if strings.Contains(string(data), "httpStatus") {
		t.Errorf("serialized envelope leaks httpStatus: %s", data)
	}
}

func TestClassifyTransportError(t *testing.T) {
	err := &platform.TransportError{Err: errors.New("connection refused")}
	env := Classify(err)
	if !strings.Contains(env.Message, "Platform API connection failed") {
		t.Errorf("Message = %q", env.Message)
	}
	if env.HTTPStatus != 0 {
		t.Errorf("transport error must not carry httpStatus: %+v", env)
	}
}

func TestClassifyParseError(t *testing.T) {
	err := &platform.ParseError{Message: "Unable to parse payload at /tmp/x.json: unexpected end of JSON input"}
	env := Classify(err)
	if env.Message != err.Message {
		t.Errorf("Message = %q", env.Message)
	}
}

func TestClassifyGenericError(t *testing.T) {
	env := Classify(errors.New("Authentication required: set PLATFORM_API_BEARER_TOKEN (preferred) or PLATFORM_API_KEY."))
	if env.Status != "error" {
		t.Errorf("Status = %q", env.Status)
	}
	if env.Code != "" || env.RequestID != "" || env.HTTPStatus != 0 {
		t.Errorf("generic error must fill message only: %+v", env)
	}
}

func TestClassifyNil(t *testing.T) {
	env := Classify(nil)
	if env.Message == "" || env.Status != "error" {
		t.Errorf("env = %+v", env)
	}
}
