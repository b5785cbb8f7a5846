package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/metadata"
)

func withPropagator(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func TestGRPCMetadataPropagation(t *testing.T) {
	withPropagator(t)
	testTel := NewTestTelemetry(t)
	defer testTel.Shutdown(context.Background())

	ctx, span := testTel.Telemetry().StartSpan(context.Background(), "client")
	defer span.End()

	out := InjectOutgoing(ctx)
	md, ok := metadata.FromOutgoingContext(out)
	require.True(t, ok)
	assert.NotEmpty(t, md.Get("traceparent"))

	in := ExtractIncoming(metadata.NewIncomingContext(context.Background(), md))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(in).TraceID())
}

func TestExtractIncomingWithoutMetadata(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, ExtractIncoming(ctx))
}

func TestMapPropagation(t *testing.T) {
	withPropagator(t)
	testTel := NewTestTelemetry(t)
	defer testTel.Shutdown(context.Background())

	ctx, span := testTel.Telemetry().StartSpan(context.Background(), "client")
	defer span.End()

	m := map[string]string{}
	InjectMap(ctx, m)
	assert.Contains(t, m, "traceparent")

	got := ExtractMap(context.Background(), m)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(got).TraceID())
	assert.Equal(t, context.Background(), ExtractMap(context.Background(), nil))
}

func TestMetadataCarrier(t *testing.T) {
	c := MetadataCarrier(metadata.MD{})
	assert.Equal(t, "", c.Get("missing"))
	c.Set("Key", "value")
	assert.Equal(t, "value", c.Get("key"))
	assert.Equal(t, []string{"key"}, c.Keys())
}
