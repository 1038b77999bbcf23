package perf

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/randalmurphal/testpulse/pkg/testpulse/observability"
)

// DefaultReportWindow is the look-back window used by callers that do
// not pick one explicitly.
const DefaultReportWindow = 24 * time.Hour

// MonitorConfig configures monitor behavior.
type MonitorConfig struct {
	// MaxSamplesPerKey bounds retained samples per (endpoint, method)
	// key; the oldest sample is evicted on append once full.
	// Default: 10000
	MaxSamplesPerKey int

	// MaxSampleAge drops samples older than this bound.
	// Default: 0 (unbounded)
	MaxSampleAge time.Duration

	// Logger for sample/report logging. nil disables logging.
	Logger *slog.Logger

	// Metrics exports recorded samples. nil disables recording.
	Metrics observability.MetricsRecorder

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// DefaultMonitorConfig provides reasonable defaults.
var DefaultMonitorConfig = MonitorConfig{
	MaxSamplesPerKey: 10000,
}

// Monitor is the performance-telemetry facade. API-client wrappers
// record call outcomes; consumers read statistics and reports.
// Statistics are always recomputed from the retained samples at call
// time.
type Monitor struct {
	config MonitorConfig
	store  *store
}

// NewMonitor creates a performance monitor.
func NewMonitor(config MonitorConfig) *Monitor {
	if config.MaxSamplesPerKey <= 0 {
		config.MaxSamplesPerKey = DefaultMonitorConfig.MaxSamplesPerKey
	}
	if config.Metrics == nil {
		config.Metrics = observability.NoopMetrics{}
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &Monitor{
		config: config,
		store:  newStore(config.MaxSamplesPerKey, config.MaxSampleAge, config.Clock),
	}
}

// RecordMetric appends one sample for (endpoint, method). It always
// succeeds; negative byte sizes are normalized to 0, never rejected.
func (m *Monitor) RecordMetric(endpoint, method string, duration time.Duration, statusCode int, requestBytes, responseBytes int64) {
	if requestBytes < 0 {
		requestBytes = 0
	}
	if responseBytes < 0 {
		responseBytes = 0
	}

	sample := MetricSample{
		Endpoint:      endpoint,
		Method:        method,
		Timestamp:     m.config.Clock(),
		Duration:      duration,
		StatusCode:    statusCode,
		RequestBytes:  requestBytes,
		ResponseBytes: responseBytes,
	}
	m.store.append(sample)

	m.config.Metrics.RecordSample(context.Background(), endpoint, method, duration, statusCode)
	observability.LogSampleRecorded(m.config.Logger, endpoint, method,
		float64(duration.Milliseconds()), statusCode)
}

// GetStatistics computes aggregates over all retained samples for one
// key. The second return is false when the key has no samples - absent
// data, not an error.
func (m *Monitor) GetStatistics(endpoint, method string) (PerformanceStatistics, bool) {
	key := EndpointKey{Endpoint: endpoint, Method: method}
	samples, ok := m.store.snapshot(key)
	if !ok {
		return PerformanceStatistics{}, false
	}
	return computeStatistics(key, samples), true
}

// GetAllStatistics returns statistics for every observed key, ordered
// lexicographically by "METHOD endpoint" for reproducible assertions.
func (m *Monitor) GetAllStatistics() []PerformanceStatistics {
	buckets := m.store.snapshotAll()

	keys := make([]EndpointKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	stats := make([]PerformanceStatistics, 0, len(keys))
	for _, key := range keys {
		stats = append(stats, computeStatistics(key, buckets[key]))
	}
	return stats
}

// ClearMetrics removes all samples for one key. Unrelated keys are
// unaffected.
func (m *Monitor) ClearMetrics(endpoint, method string) {
	m.store.clear(EndpointKey{Endpoint: endpoint, Method: method})
}

// ClearAllMetrics removes all samples for all keys.
func (m *Monitor) ClearAllMetrics() {
	m.store.clearAll()
}

// GetPerformanceReport filters every bucket to samples with timestamp
// in (now-window, now], computes statistics over the filtered subsets,
// and omits keys with zero in-window samples. A non-positive window
// falls back to DefaultReportWindow.
func (m *Monitor) GetPerformanceReport(window time.Duration) PerformanceReport {
	if window <= 0 {
		window = DefaultReportWindow
	}
	now := m.config.Clock()
	cutoff := now.Add(-window)

	buckets := m.store.snapshotAll()
	keys := make([]EndpointKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})

	report := PerformanceReport{
		Window:      window,
		GeneratedAt: now,
	}
	for _, key := range keys {
		var inWindow []MetricSample
		for _, s := range buckets[key] {
			if s.Timestamp.After(cutoff) && !s.Timestamp.After(now) {
				inWindow = append(inWindow, s)
			}
		}
		if len(inWindow) == 0 {
			continue
		}
		report.Entries = append(report.Entries, computeStatistics(key, inWindow))
	}

	observability.LogReportGenerated(m.config.Logger, window, len(report.Entries))
	return report
}
