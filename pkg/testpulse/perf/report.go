package perf

import "time"

// PerformanceReport is a time-windowed collection of statistics, one
// entry per key with at least one in-window sample.
type PerformanceReport struct {
	// Window is the applied look-back window.
	Window time.Duration `json:"window"`

	// GeneratedAt is when the report was computed.
	GeneratedAt time.Time `json:"generated_at"`

	// Entries holds per-key statistics in lexicographic key order.
	Entries []PerformanceStatistics `json:"entries"`
}

// Entry returns the statistics for one key, if present in the report.
func (r PerformanceReport) Entry(endpoint, method string) (PerformanceStatistics, bool) {
	for _, e := range r.Entries {
		if e.Endpoint == endpoint && e.Method == method {
			return e, true
		}
	}
	return PerformanceStatistics{}, false
}

// Empty returns true if no key had in-window samples.
func (r PerformanceReport) Empty() bool {
	return len(r.Entries) == 0
}
