// Package mux routes requests to handlers that return errors, wrapping
// each route in a middleware stack and a server span.
package mux

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// App routes requests and applies middleware.
type App struct {
	mux      *http.ServeMux
	globalMW []Middleware
	mw       []Middleware
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Handler is a http.Handler that returns an error.
type Handler func(ctx context.Context, w http.ResponseWriter, r *http.Request) error

// Middleware defines a signature to chain Handler together.
type Middleware func(handler Handler) Handler

// New creates an App. A no-op tracer and a discarding logger are used
// unless overridden via options.
func New(optFns ...Option) *App {
	var opts options
	for _, opt := range optFns {
		opt(&opts)
	}
	if opts.logger == nil {
		opts.logger = slog.New(slog.DiscardHandler)
	}
	if opts.tracer == nil {
		opts.tracer = noop.NewTracerProvider().Tracer("no-op tracer")
	}

	return &App{
		mux:      http.NewServeMux(),
		globalMW: opts.globalMW,
		logger:   opts.logger,
		tracer:   opts.tracer,
	}
}

// ServeHTTP implements http.Handler. Global middleware sees every request,
// including the ones no route matches.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveHTTP := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		a.mux.ServeHTTP(w, r)
		return nil
	}
	wrapped := wrap(a.globalMW, serveHTTP)

	if err := wrapped(r.Context(), w, r); err != nil {
		a.logger.Error("serve http", "error", err)
	}
}

// Use appends route middleware. It applies to routes registered after
// the call.
func (a *App) Use(mw ...Middleware) {
	a.mw = append(a.mw, mw...)
}

// Get registers a handler for GET requests at the given path.
func (a *App) Get(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodGet, path, fn, mw...)
}

// Post registers a handler for POST requests at the given path.
func (a *App) Post(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodPost, path, fn, mw...)
}

// Delete registers a handler for DELETE requests at the given path.
func (a *App) Delete(path string, fn Handler, mw ...Middleware) {
	a.Handle(http.MethodDelete, path, fn, mw...)
}

// Handle registers handler for method and path. Route middleware wraps the
// handler-specific mw, and both run inside a span named after the route.
func (a *App) Handle(method, path string, handler Handler, mw ...Middleware) {
	handler = wrap(mw, handler)
	handler = wrap(a.mw, handler)

	pattern := fmt.Sprintf("%s %s", method, path)

	h := func(w http.ResponseWriter, r *http.Request) {
		ctx, span := a.startSpan(w, r, pattern)
		defer span.End()

		traceID := span.SpanContext().TraceID().String()
		if !span.SpanContext().TraceID().IsValid() {
			traceID = uuid.New().String()
		}

		v := BaseValues{
			TraceID: traceID,
			Now:     time.Now().UTC(),
		}

		r = r.WithContext(setValues(ctx, &v))

		if err := handler(r.Context(), w, r); err != nil {
			a.logger.Error("handle", "route", pattern, "error", err)
		}

		span.SetAttributes(attribute.Int("http.status_code", v.StatusCode))
	}

	a.mux.HandleFunc(pattern, h)
}

// startSpan starts the server span and writes the trace context into the
// response headers.
func (a *App) startSpan(w http.ResponseWriter, r *http.Request, route string) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	ctx, span := a.tracer.Start(ctx, "mux.handler", trace.WithSpanKind(trace.SpanKindServer))
	span.SetAttributes(
		attribute.String("http.route", route),
		attribute.String("path", r.RequestURI),
	)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(w.Header()))

	return ctx, span
}

// wrap middleware around the handler and execute in order given.
func wrap(mw []Middleware, handler Handler) Handler {
	for _, mwFn := range slices.Backward(mw) {
		if mwFn != nil {
			handler = mwFn(handler)
		}
	}

	return handler
}
