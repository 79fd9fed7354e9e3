// Package telemetry wires OpenTelemetry span instrumentation across the
// REAPI/RWAPI call surface, grounded on
// flyingrobots-go-redis-work-queue's internal/obs/tracing.go (OTLP/HTTP
// exporter, probabilistic sampler, global tracer provider) with the
// job-queue-specific helpers replaced by BuildGrid's own span shapes so a
// trace follows one Action from Execute through WaitExecution to
// ByteStream transfer.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Config controls whether and where spans are exported. A zero Config
// disables tracing: Init returns a nil provider and the Start* helpers
// become inexpensive no-ops via the global no-op tracer.
type Config struct {
	Enabled      bool
	Endpoint     string // OTLP/HTTP collector endpoint, e.g. "localhost:4318"
	SamplingRate float64
}

// Init builds and installs a global TracerProvider per cfg. Callers
// should defer Shutdown(ctx, tp) to flush pending spans.
func Init(cfg Config) (*sdktrace.TracerProvider, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, nil
	}

	exporter, err := otlptrace.New(context.Background(), otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		return nil, err
	}

	hostname, _ := os.Hostname()
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("buildgrid"),
		semconv.HostNameKey.String(hostname),
	)

	rate := cfg.SamplingRate
	if rate <= 0 {
		rate = 1.0
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(rate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, nil
}

// Shutdown flushes and stops tp. Safe to call with a nil tp (tracing
// disabled).
func Shutdown(ctx context.Context, tp *sdktrace.TracerProvider) error {
	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

// StartExecuteSpan opens the root span for one Execute call, tagged with
// the action digest so every lease attempt and cache lookup for that
// action nests under it.
func StartExecuteSpan(ctx context.Context, instanceName, actionHash string, actionSizeBytes int64) (context.Context, trace.Span) {
	tracer := otel.Tracer("buildgrid/execution")
	return tracer.Start(ctx, "execution.execute",
		trace.WithAttributes(
			attribute.String("buildgrid.instance", instanceName),
			attribute.String("buildgrid.action.hash", actionHash),
			attribute.Int64("buildgrid.action.size_bytes", actionSizeBytes),
		),
	)
}

// StartWaitExecutionSpan opens a span for one WaitExecution subscription
// against an already-running job.
func StartWaitExecutionSpan(ctx context.Context, jobName string) (context.Context, trace.Span) {
	tracer := otel.Tracer("buildgrid/execution")
	return tracer.Start(ctx, "execution.wait_execution",
		trace.WithAttributes(attribute.String("buildgrid.job.name", jobName)),
	)
}

// StartByteStreamSpan opens a span for one ByteStream Read or Write call.
func StartByteStreamSpan(ctx context.Context, operation, resourceName string) (context.Context, trace.Span) {
	tracer := otel.Tracer("buildgrid/bytestream")
	return tracer.Start(ctx, "bytestream."+operation,
		trace.WithAttributes(
			attribute.String("buildgrid.bytestream.operation", operation),
			attribute.String("buildgrid.bytestream.resource_name", resourceName),
		),
	)
}

// RecordError marks span as failed and attaches err, a no-op if err is
// nil or span isn't recording.
func RecordError(span trace.Span, err error) {
	if err == nil || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSuccess marks span as having completed without error.
func SetSuccess(span trace.Span) {
	if span.IsRecording() {
		span.SetStatus(codes.Ok, "")
	}
}
