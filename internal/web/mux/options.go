package mux

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

type Option func(*options)

type options struct {
	tracer   trace.Tracer
	logger   *slog.Logger
	globalMW []Middleware
}

// WithGlobal sets middleware that runs on every request before routing,
// in the order given.
func WithGlobal(mw ...Middleware) Option {
	return func(opts *options) {
		opts.globalMW = append(opts.globalMW, mw...)
	}
}

// WithTracer injects the given tracer into the App.
func WithTracer(tracer trace.Tracer) Option {
	return func(opts *options) {
		opts.tracer = tracer
	}
}

// WithLogger sets the logger used by the App for errors that escape every
// middleware.
func WithLogger(log *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = log
	}
}
