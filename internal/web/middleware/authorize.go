package middleware

import (
	"context"
	"net/http"

	"github.com/adamwoolhether/carbone/internal/web/errs"
	"github.com/adamwoolhether/carbone/internal/web/mux"
)

// Messages the render API answers credential failures with.
const (
	MsgUnauthorized   = "Unauthorized, please provide a correct API key"
	MsgVersionMissing = "Carbone-Version header is required"
)

// Authorize rejects requests that do not carry apiKey as a bearer token
// with a 401, and requests without a Carbone-Version header with a 400.
func Authorize(apiKey string) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if r.Header.Get("Authorization") != "Bearer "+apiKey {
				return errs.Newf(http.StatusUnauthorized, MsgUnauthorized)
			}

			if r.Header.Get("Carbone-Version") == "" {
				return errs.Newf(http.StatusBadRequest, MsgVersionMissing)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
