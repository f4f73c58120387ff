package mux

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ctxKey int

const (
	base ctxKey = iota + 1
)

// BaseValues are shared by the middleware of one request.
type BaseValues struct {
	TraceID    string
	Now        time.Time
	StatusCode int
}

// SetStatusCode records the status written for the request.
func SetStatusCode(ctx context.Context, statusCode int) {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return
	}

	v.StatusCode = statusCode
}

// GetValues retrieves the BaseValues from the given context. Outside a
// routed request it returns fresh values with a nil trace ID.
func GetValues(ctx context.Context) *BaseValues {
	v, ok := ctx.Value(base).(*BaseValues)
	if !ok {
		return &BaseValues{
			TraceID: uuid.Nil.String(),
			Now:     time.Now(),
		}
	}

	return v
}

func setValues(ctx context.Context, v *BaseValues) context.Context {
	return context.WithValue(ctx, base, v)
}
