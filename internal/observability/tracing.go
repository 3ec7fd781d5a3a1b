// Package observability provides tracing and metrics helpers.
package observability

import (
	"context"
	"fmt"

	"yatube/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName is the name spans and metrics are reported under.
const ServiceName = "yatube"

// Tracer is the global tracer used for the application.
var Tracer trace.Tracer = otel.Tracer(ServiceName)

// exporter builds the span exporter named by TRACING_EXPORTER.
func exporter(cfg *config.Config) (sdktrace.SpanExporter, error) {
	switch cfg.TracingExporter {
	case "otlp":
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if !cfg.IsProduction() {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(context.Background(), opts...)
	case "", "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("unknown tracing exporter %q", cfg.TracingExporter)
	}
}

// sampler keeps a TRACING_SAMPLE_RATIO share of new traces and follows the
// caller's decision otherwise.
func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// InitTracing installs the global tracer provider when TRACING_ENABLED is
// set. The returned func flushes and stops it.
func InitTracing(cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.TracingEnabled {
		Tracer = otel.Tracer(ServiceName)
		return func(context.Context) error { return nil }, nil
	}

	exp, err := exporter(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracing exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(ServiceName),
			attribute.String("environment", cfg.Env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.TracingSampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	Tracer = tp.Tracer(ServiceName)
	return tp.Shutdown, nil
}

// StartRepositorySpan opens a "repository.<table>.<method>" span.
func StartRepositorySpan(ctx context.Context, table, method string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "repository."+table+"."+method,
		trace.WithAttributes(
			attribute.String("db.table", table),
			attribute.String("db.operation", method),
		))
}

// StartServiceSpan opens a "<service>.<method>" span.
func StartServiceSpan(ctx context.Context, service, method string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, service+"."+method,
		trace.WithAttributes(attribute.String("code.namespace", service)))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
