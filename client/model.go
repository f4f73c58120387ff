package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// maxErrBodySize caps the amount of response body read when
// building an error for an unexpected status code. This prevents
// unbounded memory usage when a large response arrives with a
// wrong status.
const maxErrBodySize = 4 << 10 // 4KB

var (
	// ErrValidation is matched by every [ValidationError]. It is returned
	// before any network call is made.
	ErrValidation = errors.New("validation failed")
	// ErrTransport is matched by every [TransportError].
	ErrTransport = errors.New("transport failure")
	// ErrUnexpectedStatusCode is the sentinel error wrapped by [RemoteError].
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrAuthFailure is joined with [ErrUnexpectedStatusCode] when the server
	// responds with 401 Unauthorized or 403 Forbidden.
	ErrAuthFailure = errors.New("auth failure")
	// ErrParse is matched by every [ParseError].
	ErrParse = errors.New("parsing response")
)

// ValidationError reports operation arguments or client configuration
// that failed validation.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrValidation, e.Fields)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Fields}
}

// TransportError is returned when the request never produced an HTTP
// response: timeouts, DNS failures, refused or reset connections.
type TransportError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v after %d attempt(s): %v", e.Op, ErrTransport, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// RemoteError is returned when the HTTP response status code
// is not in the 2xx range, or when the service answers 2xx
// with an explicit failure envelope.
type RemoteError struct {
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func newRemoteError(statusCode int, message string, body []byte) *RemoteError {
	err := ErrUnexpectedStatusCode
	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		err = errors.Join(ErrUnexpectedStatusCode, ErrAuthFailure)
	}

	if len(body) > maxErrBodySize {
		body = body[:maxErrBodySize]
	}

	return &RemoteError{
		StatusCode: statusCode,
		Message:    message,
		Body:       string(body),
		Err:        err,
	}
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: %d, message: %s", ErrUnexpectedStatusCode, e.StatusCode, e.Message)
	}

	return fmt.Sprintf("%v: %d, body: %s", ErrUnexpectedStatusCode, e.StatusCode, e.Body)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// ParseError is returned when a successful response was expected to
// carry a JSON document with a given field and did not.
type ParseError struct {
	Field string
	Body  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: field %q: %v", ErrParse, e.Field, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// FieldError is used to indicate an error with a specific field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// Error implements the error interface, returning a human-readable
// summary of all field errors.
func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// Fields returns the fields that failed validation.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, fld := range fe {
		m[fld.Field] = fld.Err
	}
	return m
}
