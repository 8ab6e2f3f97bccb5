// Package trace provides distributed tracing for regtrace via
// OpenTelemetry with an OTLP gRPC exporter.
package trace

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Tracer defines the tracing interface the engine's surfaces use
type Tracer interface {
	// Start creates a new span
	Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span)

	// TraceID returns the trace ID from context, if any
	TraceID(ctx context.Context) string

	// Shutdown flushes and stops the tracer provider
	Shutdown(ctx context.Context) error
}

// Config defines tracer construction options
type Config struct {
	// ServiceName identifies this process in traces
	ServiceName string

	// Endpoint is the OTLP gRPC collector address
	Endpoint string

	// SampleRatio in [0,1]; 0 disables sampling entirely
	SampleRatio float64
}

// OtelTracer wraps an OpenTelemetry tracer provider
type OtelTracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewOtelTracer creates a tracer exporting to an OTLP collector
func NewOtelTracer(ctx context.Context, cfg Config) (*OtelTracer, error) {
	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	return &OtelTracer{
		tracer:   provider.Tracer(cfg.ServiceName),
		provider: provider,
	}, nil
}

// NewNoop returns a tracer that records nothing; used in tests and when
// tracing is disabled by configuration
func NewNoop() Tracer {
	return &OtelTracer{tracer: trace.NewNoopTracerProvider().Tracer("noop")}
}

// Start creates a new span
func (t *OtelTracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

// TraceID returns the current trace ID, or empty when not recording
func (t *OtelTracer) TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// Shutdown flushes and stops the provider
func (t *OtelTracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// Attr builds a string span attribute
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}
