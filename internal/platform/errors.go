package platform

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx response from the platform API, carrying whatever
// structured error body the server returned.
type APIError struct {
	HTTPStatus int
	Message    string
	Code       string
	RequestID  string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError is a connection-level failure (refused, reset, timeout):
// the request may or may not have reached the server.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Platform API connection failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError is a client-side input failure raised before any
// network call. It never carries an HTTP status.
type ValidationError struct {
	// Field names the offending flag when the failure is a missing or
	// malformed single field; empty for cross-field failures.
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ParseError is an unparseable JSON payload: a response body or a local
// input file.
type ParseError struct {
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
