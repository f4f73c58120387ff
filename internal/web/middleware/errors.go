package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path"

	"github.com/adamwoolhether/carbone/internal/web"
	"github.com/adamwoolhether/carbone/internal/web/errs"
	"github.com/adamwoolhether/carbone/internal/web/mux"
)

// Errors turns an error coming out of the call chain into a failure
// envelope. Errors that are not an *errs.Error are answered with a 500
// and their message is withheld.
func Errors(log *slog.Logger) mux.Middleware {
	m := func(handler mux.Handler) mux.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			err := handler(ctx, w, r)
			if err == nil {
				return nil
			}

			appErr, ok := errors.AsType[*errs.Error](err)
			if !ok {
				appErr = errs.NewInternal(err)
			}

			reqLog := log.With("trace_id", mux.GetValues(ctx).TraceID)
			reqLog.Error(err.Error(), "source_err_file", path.Base(appErr.FileName), "source_err_func", path.Base(appErr.FuncName))

			if appErr.InnerErr {
				appErr.Message = http.StatusText(appErr.Code)
			}

			return web.RespondError(ctx, w, appErr)
		}

		return h
	}

	return m
}
