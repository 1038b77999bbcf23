package perf

import "time"

// EndpointKey identifies one metric bucket.
type EndpointKey struct {
	Endpoint string
	Method   string
}

// String returns the canonical "METHOD endpoint" form used for
// deterministic ordering.
func (k EndpointKey) String() string {
	return k.Method + " " + k.Endpoint
}

// MetricSample is one immutable measurement of a single API call.
type MetricSample struct {
	Endpoint      string        `json:"endpoint"`
	Method        string        `json:"method"`
	Timestamp     time.Time     `json:"timestamp"`
	Duration      time.Duration `json:"duration"`
	StatusCode    int           `json:"status_code"`
	RequestBytes  int64         `json:"request_bytes"`
	ResponseBytes int64         `json:"response_bytes"`
}

// Key returns the bucket key for this sample.
func (s MetricSample) Key() EndpointKey {
	return EndpointKey{Endpoint: s.Endpoint, Method: s.Method}
}

// Success reports whether the call completed without an error status.
func (s MetricSample) Success() bool {
	return s.StatusCode < 400
}
