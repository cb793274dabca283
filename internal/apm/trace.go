package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans on the global tracer provider. It is resolved per
// call, so a Tracer created before NewTraceProvider still exports.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span)
	FromContext(ctx context.Context) Span
}

type openTracer struct {
	name string
}

func NewTracer(name string) Tracer {
	return &openTracer{name: name}
}

func (t *openTracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	ctx, span := otel.Tracer(t.name).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, NewSpan(span)
}

func (t *openTracer) FromContext(ctx context.Context) Span {
	return NewSpan(trace.SpanFromContext(ctx))
}
