package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records testpulse telemetry.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish dispatch with its duration and
	// per-handler result counts.
	RecordPublish(ctx context.Context, eventType string, duration time.Duration, succeeded, failed int)

	// RecordHandler records a single handler invocation.
	RecordHandler(ctx context.Context, eventType, handler string, duration time.Duration, err error)

	// RecordSample records one API performance sample.
	RecordSample(ctx context.Context, endpoint, method string, duration time.Duration, statusCode int)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishes       metric.Int64Counter
	publishLatency  metric.Float64Histogram
	handlerLatency  metric.Float64Histogram
	handlerFailures metric.Int64Counter
	samples         metric.Int64Counter
	sampleLatency   metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("testpulse")

	publishes, err := meter.Int64Counter("testpulse.bus.publishes",
		metric.WithDescription("Number of publish calls"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("testpulse.bus.publish_latency_ms",
		metric.WithDescription("Publish dispatch latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerLatency, err := meter.Float64Histogram("testpulse.bus.handler_latency_ms",
		metric.WithDescription("Handler invocation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	handlerFailures, err := meter.Int64Counter("testpulse.bus.handler_failures",
		metric.WithDescription("Number of failed handler invocations"),
	)
	if err != nil {
		return nil, err
	}

	samples, err := meter.Int64Counter("testpulse.perf.samples",
		metric.WithDescription("Number of recorded performance samples"),
	)
	if err != nil {
		return nil, err
	}

	sampleLatency, err := meter.Float64Histogram("testpulse.perf.sample_latency_ms",
		metric.WithDescription("Recorded API call latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishes:       publishes,
		publishLatency:  publishLatency,
		handlerLatency:  handlerLatency,
		handlerFailures: handlerFailures,
		samples:         samples,
		sampleLatency:   sampleLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPublish records one publish dispatch.
func (m *otelMetrics) RecordPublish(ctx context.Context, eventType string, duration time.Duration, succeeded, failed int) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
	}

	m.publishes.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.publishLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordHandler records a single handler invocation.
func (m *otelMetrics) RecordHandler(ctx context.Context, eventType, handler string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event_type", eventType),
		attribute.String("handler", handler),
	}

	m.handlerLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
	if err != nil {
		m.handlerFailures.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordSample records one API performance sample.
func (m *otelMetrics) RecordSample(ctx context.Context, endpoint, method string, duration time.Duration, statusCode int) {
	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
		attribute.String("method", method),
		attribute.Int("status_code", statusCode),
	}

	m.samples.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.sampleLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}
