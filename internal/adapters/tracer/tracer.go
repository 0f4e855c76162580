// Package tracer implements ports.Tracer using OpenTelemetry.
package tracer

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"ekam.build/ekam/internal/core/ports"
)

// Setup installs an SDK TracerProvider as the global default, so spans
// created through New actually record rather than going through otel's
// no-op fallback. Ekam runs as a one-shot CLI with no external collector
// configured, so the provider holds spans in memory only. Callers that
// want control over the global provider, such as tests using tracetest,
// should call otel.SetTracerProvider themselves instead.
func Setup() {
	otel.SetTracerProvider(sdktrace.NewTracerProvider())
}

// OTelTracer implements ports.Tracer over an OpenTelemetry trace.Tracer.
type OTelTracer struct {
	tracer trace.Tracer
}

// New creates an OTelTracer instrumented under name, typically the
// package issuing spans (e.g. "ekam.build/ekam/internal/engine/actiondriver").
// It reads whatever TracerProvider is currently registered with otel; call
// Setup first to install one.
func New(name string) *OTelTracer {
	return &OTelTracer{tracer: otel.Tracer(name)}
}

// Start begins a new span named name.
func (t *OTelTracer) Start(ctx context.Context, name string) (context.Context, ports.Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetAttribute(key string, value any) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, toString(v)))
	}
}

func (s *otelSpan) End() {
	s.span.End()
}

func toString(v any) string {
	if stringer, ok := v.(interface{ String() string }); ok {
		return stringer.String()
	}
	return ""
}
