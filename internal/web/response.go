// Package web writes render API responses from mux handlers.
package web

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/adamwoolhether/carbone/internal/web/errs"
	"github.com/adamwoolhether/carbone/internal/web/mux"
)

// Envelope is the wrapper the render API puts around successful JSON
// answers.
type Envelope struct {
	Success bool              `json:"success"`
	Data    map[string]string `json:"data,omitempty"`
}

// RespondJSON to an HTTP request, setting the status code and body if any.
func RespondJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) error {
	mux.SetStatusCode(ctx, statusCode)

	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if _, err = w.Write(jsonData); err != nil {
		return err
	}

	return nil
}

// RespondOK writes a successful envelope carrying data, which may be nil.
func RespondOK(ctx context.Context, w http.ResponseWriter, data map[string]string) error {
	return RespondJSON(ctx, w, http.StatusOK, Envelope{Success: true, Data: data})
}

// RespondError writes the failure envelope for err with its status code.
func RespondError(ctx context.Context, w http.ResponseWriter, err *errs.Error) error {
	return RespondJSON(ctx, w, err.Code, err)
}

// RespondFile answers with content as an attachment named filename.
func RespondFile(ctx context.Context, w http.ResponseWriter, filename string, content []byte) error {
	mux.SetStatusCode(ctx, http.StatusOK)

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(content)
	return err
}
