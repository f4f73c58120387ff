package carbonetest

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Option configures a Server.
type Option func(*options)

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// WithLogger logs every request the server handles to log.
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}

// WithTracer records a server span per routed request.
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) {
		opts.tracer = tracer
	}
}
