package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHandler captures log records for testing.
type testHandler struct {
	buf   *bytes.Buffer
	level slog.Level
	attrs []slog.Attr
}

func newTestHandler() *testHandler {
	return &testHandler{
		buf:   &bytes.Buffer{},
		level: slog.LevelDebug,
	}
}

func (h *testHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{
		"level": r.Level.String(),
		"msg":   r.Message,
	}
	for _, attr := range h.attrs {
		data[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *testHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := &testHandler{
		buf:   h.buf,
		level: h.level,
		attrs: make([]slog.Attr, len(h.attrs)+len(attrs)),
	}
	copy(newH.attrs, h.attrs)
	copy(newH.attrs[len(h.attrs):], attrs)
	return newH
}

func (h *testHandler) WithGroup(_ string) slog.Handler {
	return h
}

// records decodes every captured log line.
func (h *testHandler) records(t *testing.T) []map[string]any {
	var out []map[string]any
	dec := json.NewDecoder(bytes.NewReader(h.buf.Bytes()))
	for dec.More() {
		var m map[string]any
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestEnrichLogger(t *testing.T) {
	h := newTestHandler()
	logger := EnrichLogger(slog.New(h), "test.started", "evt-1")
	require.NotNil(t, logger)

	logger.Info("dispatching")

	recs := h.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "test.started", recs[0]["event_type"])
	assert.Equal(t, "evt-1", recs[0]["event_id"])
}

func TestEnrichLoggerNil(t *testing.T) {
	assert.Nil(t, EnrichLogger(nil, "test", "evt-1"))
}

func TestLogDispatchComplete(t *testing.T) {
	h := newTestHandler()
	LogDispatchComplete(slog.New(h), "test.started", 12.5, 3, 1)

	recs := h.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "dispatch completed", recs[0]["msg"])
	assert.Equal(t, "test.started", recs[0]["event_type"])
	assert.Equal(t, 12.5, recs[0]["duration_ms"])
	assert.Equal(t, float64(3), recs[0]["succeeded"])
	assert.Equal(t, float64(1), recs[0]["failed"])
}

func TestLogHandlerFailure(t *testing.T) {
	h := newTestHandler()
	LogHandlerFailure(slog.New(h), "test.started", "notifier", "failed", errors.New("boom"))

	recs := h.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "notifier", recs[0]["handler"])
	assert.Equal(t, "failed", recs[0]["status"])
	assert.Equal(t, "boom", recs[0]["error"])
}

func TestLogHandlerFailureNoError(t *testing.T) {
	h := newTestHandler()
	LogHandlerFailure(slog.New(h), "test.started", "notifier", "timed_out", nil)

	recs := h.records(t)
	require.Len(t, recs, 1)
	_, hasError := recs[0]["error"]
	assert.False(t, hasError)
}

func TestLogHelpersNilLogger(t *testing.T) {
	// All helpers tolerate a nil logger.
	LogDispatchComplete(nil, "t", 1, 0, 0)
	LogHandlerFailure(nil, "t", "h", "failed", nil)
	LogBusClosed(nil, 0, 0)
	LogSampleRecorded(nil, "/users", "GET", 1, 200)
	LogReportGenerated(nil, time.Hour, 0)
}

func TestTimedOperation(t *testing.T) {
	done := TimedOperation()
	time.Sleep(10 * time.Millisecond)
	elapsed := done()
	assert.GreaterOrEqual(t, elapsed, float64(10))
}
