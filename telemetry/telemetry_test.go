package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

type TelemetrySuite struct {
	suite.Suite
	ctx context.Context
}

func (s *TelemetrySuite) SetupTest() {
	s.ctx = context.Background()
}

func TestTelemetrySuite(t *testing.T) {
	suite.Run(t, new(TelemetrySuite))
}

func (s *TelemetrySuite) TestNewDebug() {
	var traces, metrics bytes.Buffer
	tel, err := New(s.ctx, Config{
		ServiceName:    "calc-server",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Debug:          true,
		Enabled:        true,
		TraceWriter:    &traces,
		MetricWriter:   &metrics,
	})
	s.Require().NoError(err)
	s.True(tel.IsEnabled())
	s.NotNil(tel.tp)
	s.NotNil(tel.mp)
	s.NotNil(tel.tracer)
	s.NotNil(tel.requestDuration)
	s.NotNil(tel.errorCounter)

	_, span := tel.StartSpan(s.ctx, "calculate")
	span.End()
	tel.RecordRequest(s.ctx, time.Millisecond, "/calculator.Calculator/Calculate", "200", nil)

	s.NoError(tel.Shutdown(s.ctx))
	s.Contains(traces.String(), "calculate")
	s.Contains(metrics.String(), "request_duration")
}

func (s *TelemetrySuite) TestNewDisabled() {
	tel, err := New(s.ctx, Config{
		ServiceName: "calc-server",
		Enabled:     false,
	})
	s.NoError(err)
	s.NotNil(tel)
	s.False(tel.IsEnabled())
}

func (s *TelemetrySuite) TestNewOTLP() {
	// OTLP exporters dial lazily, creation succeeds without a collector.
	tel, err := New(s.ctx, Config{
		ServiceName:    "calc-server",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        true,
	})
	s.Require().NoError(err)
	s.True(tel.IsEnabled())

	ctx, cancel := context.WithTimeout(s.ctx, 100*time.Millisecond)
	defer cancel()
	_ = tel.Shutdown(ctx)
}

func (s *TelemetrySuite) TestNewNoop() {
	tel, err := NewNoop()
	s.NoError(err)
	s.False(tel.IsEnabled())
	s.NotNil(tel.tp)
	s.NotNil(tel.mp)
	s.NotNil(tel.requestDuration)
	s.NotNil(tel.errorCounter)

	ctx, span := tel.StartSpan(s.ctx, "noop")
	s.Equal(s.ctx, ctx)
	s.False(span.SpanContext().IsValid())
	span.End()

	tel.RecordRequest(s.ctx, time.Millisecond, "m", "200", errors.New("ignored"))
	s.NoError(tel.Shutdown(s.ctx))
}

func (s *TelemetrySuite) TestStartSpan() {
	testTel := NewTestTelemetry(s.T())
	defer testTel.Shutdown(s.ctx)

	tel := testTel.Telemetry()
	ctx, span := tel.StartSpan(s.ctx, "test-span")
	s.NotEqual(s.ctx, ctx)
	s.True(span.SpanContext().IsValid())
	span.End()

	ended := testTel.Ended()
	s.Require().Len(ended, 1)
	s.Equal("test-span", ended[0].Name())
}

func (s *TelemetrySuite) TestRecordRequest() {
	testTel := NewTestTelemetry(s.T())
	defer testTel.Shutdown(s.ctx)

	tel := testTel.Telemetry()
	tel.RecordRequest(s.ctx, 100*time.Millisecond, "/calculator.Calculator/Calculate", "200", nil)
	tel.RecordRequest(s.ctx, 200*time.Millisecond, "/calculator.Calculator/Calculate", "400", errors.New("unsupported operation"))

	rm, err := testTel.Collect(s.ctx)
	s.Require().NoError(err)

	duration, ok := FindMetric(rm, "request_duration")
	s.Require().True(ok)
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	s.Require().True(ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	s.Equal(uint64(2), count)

	errCount, ok := FindMetric(rm, "error_count")
	s.Require().True(ok)
	sum, ok := errCount.Data.(metricdata.Sum[int64])
	s.Require().True(ok)
	s.Require().Len(sum.DataPoints, 1)
	s.Equal(int64(1), sum.DataPoints[0].Value)
}
