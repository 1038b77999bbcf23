package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestNoopMetrics(t *testing.T) {
	m := NoopMetrics{}
	ctx := context.Background()

	// All methods are safe no-ops.
	m.RecordPublish(ctx, "test.started", time.Millisecond, 1, 0)
	m.RecordHandler(ctx, "test.started", "notifier", time.Millisecond, errors.New("boom"))
	m.RecordSample(ctx, "/users", "GET", time.Millisecond, 200)
}

func TestNoopSpanManager(t *testing.T) {
	sm := NoopSpanManager{}
	ctx := context.Background()

	pctx, span := sm.StartPublishSpan(ctx, "test.started", "evt-1")
	assert.Equal(t, ctx, pctx, "noop span manager should not modify context")
	assert.NotNil(t, span)
	assert.False(t, span.IsRecording())

	hctx, hspan := sm.StartHandlerSpan(ctx, "notifier")
	assert.Equal(t, ctx, hctx)
	assert.NotNil(t, hspan)

	sm.EndSpanWithError(span, errors.New("boom"))
	sm.EndSpanWithError(nil, nil)
	sm.AddSpanEvent(ctx, "noop", attribute.String("k", "v"))
}
