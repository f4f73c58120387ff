// Package errs defines the errors handlers return to be written as a
// render API failure envelope.
package errs

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/goccy/go-json"
)

// Error is an error with the status code to answer it with.
type Error struct {
	Code     int
	Message  string
	FuncName string
	FileName string
	InnerErr bool
}

// New constructs an error whose message is shown to the caller.
func New(code int, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf constructs an error whose formatted message is shown to the caller.
func Newf(code int, format string, args ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// NewInternal creates an error that is not intended
// to be seen by users.
func NewInternal(err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     http.StatusInternalServerError,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
		InnerErr: true,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// IsInternal returns true if the error is internal.
func (e *Error) IsInternal() bool {
	return e.InnerErr
}

// MarshalJSON renders the failure envelope: {"success":false,"error":msg}.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}{Error: e.Message})
}
