package client

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

var (
	errFieldMissing   = errors.New("field missing from response")
	errFieldNotString = errors.New("field is not a string")
)

// envelope is the wrapper the render service puts around JSON answers:
//
//	{"success": true, "data": {"templateId": "..."}}
//	{"success": false, "error": "Template not found"}
type envelope struct {
	Success *bool                      `json:"success"`
	Error   string                     `json:"error"`
	Message string                     `json:"message"`
	Data    map[string]json.RawMessage `json:"data"`
}

func (e envelope) message() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func (e envelope) failed() bool {
	return e.Success != nil && !*e.Success
}

func isSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// checkStatus returns a *RemoteError for any non-2xx status. A message is
// pulled from the body when it holds a JSON envelope; any other body is
// kept verbatim.
func checkStatus(statusCode int, body []byte) error {
	if isSuccess(statusCode) {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return newRemoteError(statusCode, "", body)
	}

	return newRemoteError(statusCode, env.message(), body)
}

// checkEnvelope inspects a 2xx body that carries no field of interest.
// An empty body is accepted; anything else must be a JSON envelope that
// does not report a failure.
func checkEnvelope(statusCode int, body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ParseError{Body: capBody(body), Err: err}
	}

	if env.failed() {
		return newRemoteError(statusCode, env.message(), body)
	}

	return nil
}

// extractField decodes a 2xx JSON body and returns the string value of
// field, looked up under "data" first and then at the top level.
func extractField(statusCode int, body []byte, field string) (string, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", &ParseError{Field: field, Body: capBody(body), Err: err}
	}

	if env.failed() {
		return "", newRemoteError(statusCode, env.message(), body)
	}

	raw, ok := env.Data[field]
	if !ok {
		var top map[string]json.RawMessage
		if err := json.Unmarshal(body, &top); err != nil {
			return "", &ParseError{Field: field, Body: capBody(body), Err: err}
		}
		raw, ok = top[field]
	}

	if !ok {
		return "", &ParseError{Field: field, Body: capBody(body), Err: errFieldMissing}
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", &ParseError{Field: field, Body: capBody(body), Err: errors.Join(errFieldNotString, err)}
	}

	if value == "" {
		return "", &ParseError{Field: field, Body: capBody(body), Err: errFieldMissing}
	}

	return value, nil
}

func capBody(body []byte) string {
	if len(body) > maxErrBodySize {
		body = body[:maxErrBodySize]
	}
	return string(body)
}
