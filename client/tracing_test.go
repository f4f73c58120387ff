package client_test

import (
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/carbone/client"
)

func TestTracing_SpanPerOperation(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(t.Context()) }()

	var calls atomic.Int32
	c := flakyClient(t, &calls, 1, connReset(), client.WithTracer(tp.Tracer("test")))

	if _, err := c.FetchTemplate(t.Context(), "abc123"); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span for the operation, got %d", len(spans))
	}

	span := spans[0]
	if span.Name() != "carbone.FetchTemplate" {
		t.Errorf("unexpected span name %q", span.Name())
	}
	if span.SpanKind() != trace.SpanKindClient {
		t.Errorf("expected client span, got %v", span.SpanKind())
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}

	if v := attrs["carbone.template.id"].AsString(); v != "abc123" {
		t.Errorf("expected template id attribute, got %q", v)
	}
	if v := attrs["carbone.attempts"].AsInt64(); v != 2 {
		t.Errorf("expected 2 attempts, got %d", v)
	}
	if v := attrs["carbone.operation_id"].AsString(); v == "" {
		t.Error("expected an operation id")
	}
}

func TestTracing_RecordsFailure(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(t.Context()) }()

	c := buildClient(t,
		client.WithTracer(tp.Tracer("test")),
		client.WithTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
			return response(http.StatusNotFound, "text/plain", "nope"), nil
		})),
	)

	err := c.DeleteTemplate(t.Context(), "abc123")
	if !errors.Is(err, client.ErrUnexpectedStatusCode) {
		t.Fatalf("expected remote error, got: %v", err)
	}

	spans := sr.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if got := spans[0].Status().Code; got != codes.Error {
		t.Errorf("expected error status, got %v", got)
	}
}
