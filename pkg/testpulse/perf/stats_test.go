package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNearestRank(t *testing.T) {
	ascending := func(n int) []time.Duration {
		out := make([]time.Duration, n)
		for i := range out {
			out[i] = time.Duration(i+1) * time.Millisecond
		}
		return out
	}

	tests := []struct {
		name       string
		sorted     []time.Duration
		percentile float64
		want       time.Duration
	}{
		{"empty", nil, 50, 0},
		{"single p50", ascending(1), 50, time.Millisecond},
		{"single p99", ascending(1), 99, time.Millisecond},
		{"hundred p50", ascending(100), 50, 50 * time.Millisecond},
		{"hundred p90", ascending(100), 90, 90 * time.Millisecond},
		{"hundred p99", ascending(100), 99, 99 * time.Millisecond},
		{"hundred p100", ascending(100), 100, 100 * time.Millisecond},
		{"three p50", ascending(3), 50, 2 * time.Millisecond},
		{"three p99", ascending(3), 99, 3 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, nearestRank(tt.sorted, tt.percentile))
		})
	}
}

func TestComputeStatisticsSingleSample(t *testing.T) {
	key := EndpointKey{Endpoint: "/users", Method: "GET"}
	stats := computeStatistics(key, []MetricSample{{
		Endpoint:   "/users",
		Method:     "GET",
		Duration:   42 * time.Millisecond,
		StatusCode: 200,
	}})

	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 0, stats.FailureCount)
	assert.Equal(t, 42*time.Millisecond, stats.MinLatency)
	assert.Equal(t, 42*time.Millisecond, stats.MaxLatency)
	assert.Equal(t, 42*time.Millisecond, stats.MeanLatency)
	assert.Equal(t, 42*time.Millisecond, stats.P50Latency)
	assert.Equal(t, 42*time.Millisecond, stats.P90Latency)
	assert.Equal(t, 42*time.Millisecond, stats.P99Latency)
}

func TestComputeStatisticsAggregates(t *testing.T) {
	key := EndpointKey{Endpoint: "/orders", Method: "POST"}
	samples := []MetricSample{
		{Duration: 30 * time.Millisecond, StatusCode: 201, RequestBytes: 100, ResponseBytes: 50},
		{Duration: 10 * time.Millisecond, StatusCode: 500, RequestBytes: 200, ResponseBytes: 25},
		{Duration: 20 * time.Millisecond, StatusCode: 200, RequestBytes: 300, ResponseBytes: 75},
	}
	stats := computeStatistics(key, samples)

	assert.Equal(t, "/orders", stats.Endpoint)
	assert.Equal(t, "POST", stats.Method)
	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.Equal(t, 10*time.Millisecond, stats.MinLatency)
	assert.Equal(t, 30*time.Millisecond, stats.MaxLatency)
	assert.Equal(t, 20*time.Millisecond, stats.MeanLatency)
	assert.Equal(t, int64(600), stats.TotalRequestBytes)
	assert.Equal(t, int64(150), stats.TotalResponseBytes)
	assert.Equal(t, int64(750), stats.TotalBytes)
}

func TestSampleSuccess(t *testing.T) {
	assert.True(t, MetricSample{StatusCode: 200}.Success())
	assert.True(t, MetricSample{StatusCode: 302}.Success())
	assert.False(t, MetricSample{StatusCode: 404}.Success())
	assert.False(t, MetricSample{StatusCode: 503}.Success())
}

func TestEndpointKeyString(t *testing.T) {
	key := EndpointKey{Endpoint: "/users", Method: "GET"}
	assert.Equal(t, "GET /users", key.String())
}
