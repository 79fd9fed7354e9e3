package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitDisabled(t *testing.T) {
	tp, err := Init(Config{Enabled: false, Endpoint: "localhost:4318"})
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestInitNoEndpoint(t *testing.T) {
	tp, err := Init(Config{Enabled: true, Endpoint: ""})
	require.NoError(t, err)
	assert.Nil(t, tp)
}

func TestShutdownNilProvider(t *testing.T) {
	assert.NoError(t, Shutdown(context.Background(), nil))
}

func TestRecordErrorAndSetSuccess(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "Error", spans[0].Status().Code.String())

	_, span2 := tp.Tracer("test").Start(context.Background(), "op-ok")
	SetSuccess(span2)
	span2.End()

	spans = recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Ok", spans[1].Status().Code.String())
}

func TestStartSpans(t *testing.T) {
	ctx, span := StartExecuteSpan(context.Background(), "main", "abc123", 42)
	assert.NotNil(t, ctx)
	span.End()

	ctx, span = StartWaitExecutionSpan(context.Background(), "operations/abc")
	assert.NotNil(t, ctx)
	span.End()

	ctx, span = StartByteStreamSpan(context.Background(), "read", "instance/blobs/abc/1")
	assert.NotNil(t, ctx)
	span.End()
}
