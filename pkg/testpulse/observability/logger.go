// Package observability provides production-grade observability features
// for testpulse: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds dispatch context to a logger.
// Returns a new logger with event_type and event_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "test.started", "evt-123")
//	enriched.Info("dispatching") // includes event_type, event_id
func EnrichLogger(logger *slog.Logger, eventType, eventID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_type", eventType),
		slog.String("event_id", eventID),
	)
}

// LogDispatchComplete logs completion of one publish dispatch.
func LogDispatchComplete(logger *slog.Logger, eventType string, durationMs float64, succeeded, failed int) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch completed",
		slog.String("event_type", eventType),
		slog.Float64("duration_ms", durationMs),
		slog.Int("succeeded", succeeded),
		slog.Int("failed", failed),
	)
}

// LogHandlerFailure logs a handler that did not succeed (non-fatal).
func LogHandlerFailure(logger *slog.Logger, eventType, handler, status string, err error) {
	if logger == nil {
		return
	}
	attrs := []any{
		slog.String("event_type", eventType),
		slog.String("handler", handler),
		slog.String("status", status),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.Warn("handler did not succeed", attrs...)
}

// LogBusClosed logs bus shutdown with final counters.
func LogBusClosed(logger *slog.Logger, published, failed uint64) {
	if logger == nil {
		return
	}
	logger.Info("event bus closed",
		slog.Uint64("published", published),
		slog.Uint64("failed", failed),
	)
}

// LogSampleRecorded logs one recorded performance sample.
func LogSampleRecorded(logger *slog.Logger, endpoint, method string, durationMs float64, statusCode int) {
	if logger == nil {
		return
	}
	logger.Debug("sample recorded",
		slog.String("endpoint", endpoint),
		slog.String("method", method),
		slog.Float64("duration_ms", durationMs),
		slog.Int("status_code", statusCode),
	)
}

// LogReportGenerated logs generation of a performance report.
func LogReportGenerated(logger *slog.Logger, window time.Duration, entries int) {
	if logger == nil {
		return
	}
	logger.Info("performance report generated",
		slog.Duration("window", window),
		slog.Int("entries", entries),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
