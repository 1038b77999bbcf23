package event

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/testpulse/pkg/testpulse/observability"
)

// Bus provides pub/sub event distribution with fan-out support.
type Bus interface {
	// Subscribe registers a handler for one event type and returns a
	// handle enabling later removal.
	Subscribe(eventType string, handler Handler) Subscription

	// SubscribeAll registers a handler for all event types.
	SubscribeAll(handler Handler) Subscription

	// Unsubscribe removes a subscription. Idempotent: removing an
	// already-removed subscription is a no-op.
	Unsubscribe(sub Subscription)

	// Publish dispatches an event to a snapshot of current subscribers
	// and blocks until every handler reaches a terminal state.
	Publish(ctx context.Context, evt Event) *DispatchOutcome

	// PublishAsync schedules dispatch and returns immediately. Handler
	// outcomes are observable only through logging and metrics.
	PublishAsync(ctx context.Context, evt Event)

	// Close shuts down the bus. Not-yet-started handlers are cancelled;
	// running handlers get the shutdown grace period.
	Close() error
}

// Subscription is a handle for one registered handler.
type Subscription interface {
	// ID returns the unique subscription identifier.
	ID() string

	// EventType returns the subscribed type ("" for all types).
	EventType() string

	// Unsubscribe removes the subscription. Idempotent.
	Unsubscribe()
}

// BusConfig configures bus behavior.
type BusConfig struct {
	// MaxConcurrentHandlers bounds concurrently executing handlers
	// across all publishes. Default: 8
	MaxConcurrentHandlers int

	// HandlerTimeout bounds how long one handler invocation is awaited.
	// Default: 30s
	HandlerTimeout time.Duration

	// ShutdownGracePeriod bounds how long Close waits for running
	// handlers. Default: 5s
	ShutdownGracePeriod time.Duration

	// Logger for dispatch logging. nil disables logging.
	Logger *slog.Logger

	// Metrics records dispatch telemetry. nil disables recording.
	Metrics observability.MetricsRecorder

	// Spans traces publishes and handler invocations. nil disables tracing.
	Spans observability.SpanManager
}

// DefaultBusConfig provides reasonable defaults.
var DefaultBusConfig = BusConfig{
	MaxConcurrentHandlers: 8,
	HandlerTimeout:        30 * time.Second,
	ShutdownGracePeriod:   5 * time.Second,
}

// LocalBus is an in-process event bus implementation.
type LocalBus struct {
	config     BusConfig
	registry   *registry
	dispatcher *dispatcher

	closed    atomic.Bool
	closeOnce sync.Once

	// asyncMu orders PublishAsync's check-and-Add against Close's Wait;
	// a bare WaitGroup would allow Add from zero to race with Wait.
	asyncMu sync.Mutex
	async   sync.WaitGroup

	published  atomic.Uint64
	dispatched atomic.Uint64
	failed     atomic.Uint64
}

// NewBus creates a new local event bus.
func NewBus(config BusConfig) *LocalBus {
	if config.MaxConcurrentHandlers <= 0 {
		config.MaxConcurrentHandlers = DefaultBusConfig.MaxConcurrentHandlers
	}
	if config.HandlerTimeout <= 0 {
		config.HandlerTimeout = DefaultBusConfig.HandlerTimeout
	}
	if config.ShutdownGracePeriod <= 0 {
		config.ShutdownGracePeriod = DefaultBusConfig.ShutdownGracePeriod
	}
	if config.Metrics == nil {
		config.Metrics = observability.NoopMetrics{}
	}
	if config.Spans == nil {
		config.Spans = observability.NoopSpanManager{}
	}

	return &LocalBus{
		config:     config,
		registry:   newRegistry(),
		dispatcher: newDispatcher(config.MaxConcurrentHandlers, config.HandlerTimeout, config.Spans),
	}
}

// Subscribe registers a handler for one event type.
func (b *LocalBus) Subscribe(eventType string, handler Handler) Subscription {
	sub := b.registry.add(eventType, handler)
	return &busSubscription{bus: b, id: sub.id, eventType: sub.eventType}
}

// SubscribeAll registers a handler for all event types.
func (b *LocalBus) SubscribeAll(handler Handler) Subscription {
	sub := b.registry.add("", handler)
	return &busSubscription{bus: b, id: sub.id, eventType: ""}
}

// Unsubscribe removes a subscription. Idempotent.
func (b *LocalBus) Unsubscribe(sub Subscription) {
	if sub == nil {
		return
	}
	b.registry.remove(sub.ID())
}

// Publish dispatches an event to all current subscribers for its type
// and waits for every handler to reach a terminal state. Handler
// failures are captured in the outcome, never returned as errors.
// Publishing on a closed bus yields an all-cancelled outcome.
func (b *LocalBus) Publish(ctx context.Context, evt Event) *DispatchOutcome {
	b.published.Add(1)

	subs := b.registry.snapshot(evt.Type())
	if len(subs) == 0 {
		return &DispatchOutcome{
			EventID:   evt.ID(),
			EventType: evt.Type(),
			StartedAt: time.Now(),
		}
	}

	pctx, span := b.config.Spans.StartPublishSpan(ctx, evt.Type(), evt.ID())
	outcome := b.dispatcher.dispatch(pctx, evt, subs)
	b.config.Spans.EndSpanWithError(span, nil)

	b.record(ctx, outcome)
	return outcome
}

// PublishAsync schedules dispatch without waiting for handler outcomes.
// Scheduling on a closed bus is a no-op.
func (b *LocalBus) PublishAsync(ctx context.Context, evt Event) {
	b.asyncMu.Lock()
	if b.closed.Load() {
		b.asyncMu.Unlock()
		return
	}
	b.async.Add(1)
	b.asyncMu.Unlock()

	go func() {
		defer b.async.Done()
		b.Publish(ctx, evt)
	}()
}

// record updates counters, metrics, and logs for one dispatch outcome.
func (b *LocalBus) record(ctx context.Context, outcome *DispatchOutcome) {
	b.dispatched.Add(uint64(len(outcome.Results)))
	b.failed.Add(uint64(outcome.Failed() + outcome.TimedOut()))

	b.config.Metrics.RecordPublish(ctx, outcome.EventType, outcome.Duration,
		outcome.Succeeded(), outcome.Failed())
	for _, r := range outcome.Results {
		b.config.Metrics.RecordHandler(ctx, outcome.EventType, r.Handler, r.Duration, r.Err)
	}

	observability.LogDispatchComplete(b.config.Logger, outcome.EventType,
		float64(outcome.Duration.Milliseconds()), outcome.Succeeded(), outcome.Failed())
	for _, r := range outcome.Failures() {
		observability.LogHandlerFailure(b.config.Logger, outcome.EventType,
			r.Handler, string(r.Status), r.Err)
	}
}

// Close shuts down the bus. Safe to call more than once.
func (b *LocalBus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		b.asyncMu.Lock()
		b.closed.Store(true)
		b.asyncMu.Unlock()
		// Drain publishes that were scheduled before close; each is
		// bounded by the handler timeout.
		b.async.Wait()
		err = b.dispatcher.close(b.config.ShutdownGracePeriod)
		observability.LogBusClosed(b.config.Logger, b.published.Load(), b.failed.Load())
	})
	return err
}

// BusStats is a snapshot of bus counters.
type BusStats struct {
	Published     uint64 // Publish calls (sync and async)
	Dispatched    uint64 // Handler invocations reaching a terminal state
	Failed        uint64 // Handlers that failed or timed out
	Subscriptions int    // Live subscriptions
}

// Stats returns current bus statistics.
func (b *LocalBus) Stats() BusStats {
	return BusStats{
		Published:     b.published.Load(),
		Dispatched:    b.dispatched.Load(),
		Failed:        b.failed.Load(),
		Subscriptions: b.registry.count(),
	}
}

// busSubscription is the public handle for a registered handler.
type busSubscription struct {
	bus       *LocalBus
	id        string
	eventType string
}

func (s *busSubscription) ID() string        { return s.id }
func (s *busSubscription) EventType() string { return s.eventType }

// Unsubscribe removes the subscription. Calling it twice is a no-op.
func (s *busSubscription) Unsubscribe() {
	s.bus.registry.remove(s.id)
}
