// Package telemetry sets up OpenTelemetry tracing and metrics for the calculator
// service and client.
package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/xizhibei/go-calc-rpc"

// Telemetry records spans and request metrics.
type Telemetry interface {
	RecordRequest(ctx context.Context, duration time.Duration, method string, status string, err error)
	StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
	Shutdown(ctx context.Context) error
	IsEnabled() bool
}

// TelemetryImpl is the OpenTelemetry SDK backed Telemetry.
type TelemetryImpl struct {
	tp              *sdktrace.TracerProvider
	mp              *sdkmetric.MeterProvider
	tracer          trace.Tracer
	meter           metric.Meter
	requestDuration metric.Float64Histogram
	errorCounter    metric.Int64Counter
	enabled         bool
}

// Config holds configuration for telemetry setup
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string

	TraceWriter  io.Writer
	MetricWriter io.Writer
	Debug        bool
	Enabled      bool
}

// New creates a Telemetry from cfg. A disabled config yields the no-op variant.
// Debug exports to TraceWriter/MetricWriter, otherwise to the OTLP/gRPC endpoint.
func New(ctx context.Context, cfg Config) (*TelemetryImpl, error) {
	if !cfg.Enabled {
		return NewNoop()
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}

	if cfg.TraceWriter == nil {
		cfg.TraceWriter = os.Stdout
	}

	if cfg.MetricWriter == nil {
		cfg.MetricWriter = os.Stdout
	}

	var traceExporter sdktrace.SpanExporter
	if cfg.Debug {
		traceExporter, err = stdouttrace.New(
			stdouttrace.WithWriter(cfg.TraceWriter),
			stdouttrace.WithPrettyPrint(),
		)
	} else {
		traceExporter, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create trace exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	var metricExporter sdkmetric.Exporter
	if cfg.Debug {
		enc := json.NewEncoder(cfg.MetricWriter)
		enc.SetIndent("", "  ")

		metricExporter, err = stdoutmetric.New(
			stdoutmetric.WithEncoder(enc),
			stdoutmetric.WithoutTimestamps(),
		)
	} else {
		metricExporter, err = otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to create metric exporter")
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(
				metricExporter,
				sdkmetric.WithInterval(10*time.Second),
			),
		),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: "request_duration"},
				sdkmetric.Stream{
					Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
						Boundaries: []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
					},
				},
			),
		),
	)
	otel.SetMeterProvider(mp)

	tel, err := newTelemetry(tp, mp, "Duration of calculator requests", "Number of failed calculator requests")
	if err != nil {
		return nil, err
	}
	tel.enabled = true
	return tel, nil
}

func newTelemetry(tp *sdktrace.TracerProvider, mp *sdkmetric.MeterProvider, durationDesc, errorDesc string) (*TelemetryImpl, error) {
	meter := mp.Meter(instrumentationName)
	requestDuration, err := meter.Float64Histogram(
		"request_duration",
		metric.WithDescription(durationDesc),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request duration histogram")
	}

	errorCounter, err := meter.Int64Counter(
		"error_count",
		metric.WithDescription(errorDesc),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create error counter")
	}

	return &TelemetryImpl{
		tp:              tp,
		mp:              mp,
		tracer:          tp.Tracer(instrumentationName),
		meter:           meter,
		requestDuration: requestDuration,
		errorCounter:    errorCounter,
	}, nil
}

// Shutdown flushes and stops the providers.
func (t *TelemetryImpl) Shutdown(ctx context.Context) error {
	if t.tp != nil {
		if err := t.tp.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "failed to shutdown trace provider")
		}
	}
	if t.mp != nil {
		if err := t.mp.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "failed to shutdown meter provider")
		}
	}
	return nil
}

// RecordRequest records the request duration and, when err is set, increments
// the error counter.
func (t *TelemetryImpl) RecordRequest(ctx context.Context, duration time.Duration, method string, status string, err error) {
	if !t.enabled {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("status", status),
	}

	t.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, metric.WithAttributes(attrs...))

	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
		t.errorCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// StartSpan starts a span. A disabled Telemetry returns ctx unchanged and a
// no-op span.
func (t *TelemetryImpl) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !t.enabled || t.tracer == nil {
		return ctx, noop.Span{}
	}
	return t.tracer.Start(ctx, name, opts...)
}

// IsEnabled reports whether telemetry is exported.
func (t *TelemetryImpl) IsEnabled() bool {
	return t.enabled
}

// NewNoop creates a Telemetry that records nothing.
func NewNoop() (*TelemetryImpl, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName("noop"),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.NeverSample()),
	)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
	)

	return newTelemetry(tp, mp, "No-op request duration histogram", "No-op error counter")
}
