package perf

import (
	"math"
	"sort"
	"time"
)

// PerformanceStatistics is an aggregated view over one bucket's samples.
type PerformanceStatistics struct {
	Endpoint string `json:"endpoint"`
	Method   string `json:"method"`

	Count        int `json:"count"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	MinLatency  time.Duration `json:"min_latency"`
	MaxLatency  time.Duration `json:"max_latency"`
	MeanLatency time.Duration `json:"mean_latency"`
	P50Latency  time.Duration `json:"p50_latency"`
	P90Latency  time.Duration `json:"p90_latency"`
	P99Latency  time.Duration `json:"p99_latency"`

	TotalRequestBytes  int64 `json:"total_request_bytes"`
	TotalResponseBytes int64 `json:"total_response_bytes"`
	TotalBytes         int64 `json:"total_bytes"`
}

// computeStatistics aggregates one bucket. samples must be non-empty.
func computeStatistics(key EndpointKey, samples []MetricSample) PerformanceStatistics {
	stats := PerformanceStatistics{
		Endpoint: key.Endpoint,
		Method:   key.Method,
		Count:    len(samples),
	}

	durations := make([]time.Duration, 0, len(samples))
	var totalLatency time.Duration
	for _, s := range samples {
		durations = append(durations, s.Duration)
		totalLatency += s.Duration

		if s.Success() {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		stats.TotalRequestBytes += s.RequestBytes
		stats.TotalResponseBytes += s.ResponseBytes
	}
	stats.TotalBytes = stats.TotalRequestBytes + stats.TotalResponseBytes

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	stats.MinLatency = durations[0]
	stats.MaxLatency = durations[len(durations)-1]
	stats.MeanLatency = totalLatency / time.Duration(len(durations))
	stats.P50Latency = nearestRank(durations, 50)
	stats.P90Latency = nearestRank(durations, 90)
	stats.P99Latency = nearestRank(durations, 99)

	return stats
}

// nearestRank returns the percentile of an ascending-sorted duration
// slice using the nearest-rank method: index = ceil(p/100 * n) - 1,
// clamped to [0, n-1]. No interpolation between adjacent samples.
func nearestRank(sorted []time.Duration, percentile float64) time.Duration {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Ceil(percentile/100*float64(n))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}
