package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// TestTelemetry is an in-memory Telemetry for tests: spans go to a
// SpanRecorder and metrics are read through a ManualReader.
type TestTelemetry struct {
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
	mr *sdkmetric.ManualReader
	sr *tracetest.SpanRecorder
}

// NewTestTelemetry creates a TestTelemetry and installs its providers globally.
func NewTestTelemetry(t *testing.T) *TestTelemetry {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)

	mr := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(mr))
	otel.SetMeterProvider(mp)

	return &TestTelemetry{
		tp: tp,
		mp: mp,
		mr: mr,
		sr: sr,
	}
}

// Telemetry returns an enabled Telemetry backed by the test providers.
func (tt *TestTelemetry) Telemetry() *TelemetryImpl {
	tel, err := newTelemetry(tt.tp, tt.mp, "test request duration", "test error count")
	if err != nil {
		panic(err)
	}
	tel.enabled = true
	return tel
}

// Shutdown gracefully shuts down the test telemetry providers
func (tt *TestTelemetry) Shutdown(ctx context.Context) error {
	if err := tt.tp.Shutdown(ctx); err != nil {
		return err
	}
	if err := tt.mp.Shutdown(ctx); err != nil {
		return err
	}
	return nil
}

// GetReader returns the metric reader for testing
func (tt *TestTelemetry) GetReader() *sdkmetric.ManualReader {
	return tt.mr
}

// Ended returns the spans that have ended so far.
func (tt *TestTelemetry) Ended() []sdktrace.ReadOnlySpan {
	return tt.sr.Ended()
}

// Collect reads the current metrics.
func (tt *TestTelemetry) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	err := tt.mr.Collect(ctx, &rm)
	return rm, err
}

// FindMetric returns the metric with the given name, if collected.
func FindMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}
