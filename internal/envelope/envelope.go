// Package envelope normalizes every failure into the single
// machine-readable error shape the CLI writes to stderr. Classification
// happens exactly once, at the command boundary.
package envelope

import (
	"encoding/json"
	"errors"

	"github.com/lona-agency/trading-cli/internal/platform"
)

// ErrorEnvelope is the one error shape the CLI emits. Optional fields are
// only set when the failure kind supplies them: a client-side validation
// error never carries an httpStatus.
type ErrorEnvelope struct {
	Status     string          `json:"status"`
	Message    string          `json:"message"`
	Code       string          `json:"code,omitempty"`
	RequestID  string          `json:"requestId,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	HTTPStatus int             `json:"httpStatus,omitempty"`
}

// Classify maps any failure into an ErrorEnvelope, most specific error
// kind first.
func Classify(err error) ErrorEnvelope {
	out := ErrorEnvelope{Status: "error"}

	var apiErr *platform.APIError
	if errors.As(err, &apiErr) {
		out.Message = apiErr.Message
		out.Code = apiErr.Code
		out.RequestID = apiErr.RequestID
		out.Details = apiErr.Details
		out.HTTPStatus = apiErr.HTTPStatus
		return out
	}

	var validationErr *platform.ValidationError
	if errors.As(err, &validationErr) {
		out.Message = validationErr.Message
		return out
	}

	var transportErr *platform.TransportError
	if errors.As(err, &transportErr) {
		out.Message = transportErr.Error()
		return out
	}

	var parseErr *platform.ParseError
	if errors.As(err, &parseErr) {
		out.Message = parseErr.Message
		return out
	}

	if err != nil {
		out.Message = err.Error()
		return out
	}

	out.Message = "unknown error"
	return out
}
