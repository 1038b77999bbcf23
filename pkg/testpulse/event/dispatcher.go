package event

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/randalmurphal/testpulse/pkg/testpulse/observability"
)

// ErrShutdownTimeout is returned by Close when running handlers do not
// finish within the shutdown grace period.
var ErrShutdownTimeout = errors.New("event: shutdown grace period exceeded")

// dispatcher executes handler snapshots under a global concurrency bound.
// Slots are shared across all concurrent publishes; admission is
// first-come, first-served as slots free up.
type dispatcher struct {
	slots          chan struct{}
	handlerTimeout time.Duration
	closeCh        chan struct{}
	inflight       sync.WaitGroup
	spans          observability.SpanManager
}

func newDispatcher(maxConcurrent int, handlerTimeout time.Duration, spans observability.SpanManager) *dispatcher {
	return &dispatcher{
		slots:          make(chan struct{}, maxConcurrent),
		handlerTimeout: handlerTimeout,
		closeCh:        make(chan struct{}),
		spans:          spans,
	}
}

// dispatch runs all subscriptions for one publish call. Handlers are
// started in snapshot order; each acquires a slot before starting and
// reaches a terminal state within the handler timeout, so dispatch
// itself is bounded.
func (d *dispatcher) dispatch(ctx context.Context, evt Event, subs []*subscription) *DispatchOutcome {
	outcome := &DispatchOutcome{
		EventID:   evt.ID(),
		EventType: evt.Type(),
		StartedAt: time.Now(),
		Results:   make([]HandlerResult, len(subs)),
	}

	var wg sync.WaitGroup
	for i, sub := range subs {
		if d.interrupted(ctx) {
			outcome.Results[i] = cancelledResult(sub)
			continue
		}

		select {
		case d.slots <- struct{}{}:
		case <-ctx.Done():
			outcome.Results[i] = cancelledResult(sub)
			continue
		case <-d.closeCh:
			outcome.Results[i] = cancelledResult(sub)
			continue
		}

		wg.Add(1)
		go func(i int, sub *subscription) {
			defer wg.Done()
			outcome.Results[i] = d.runHandler(ctx, evt, sub)
		}(i, sub)
	}
	wg.Wait()

	outcome.Duration = time.Since(outcome.StartedAt)
	return outcome
}

// interrupted reports whether the publish context was cancelled or the
// bus was closed. Checked before slot acquisition so cancellation skips
// not-yet-started handlers deterministically.
func (d *dispatcher) interrupted(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-d.closeCh:
		return true
	default:
		return false
	}
}

// runHandler executes one handler and waits for its terminal state.
// TimedOut is a terminal state of the invocation: the concurrency slot
// is released as soon as it is reached, so a handler that ignores its
// context cannot starve pending handlers or the publisher. The
// abandoned goroutine stays tracked in inflight until it returns.
func (d *dispatcher) runHandler(ctx context.Context, evt Event, sub *subscription) HandlerResult {
	start := time.Now()
	name := sub.name()

	deadline := start.Add(d.handlerTimeout)
	hctx, hcancel := context.WithDeadline(ctx, deadline)

	done := make(chan error, 1)
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				done <- &HandlerPanicError{Handler: name, Value: r}
			}
		}()

		sctx, span := d.spans.StartHandlerSpan(hctx, name)
		err := sub.handler.Handle(sctx, evt)
		d.spans.EndSpanWithError(span, err)
		done <- err
	}()

	result := HandlerResult{
		Handler:        name,
		SubscriptionID: sub.id,
	}

	select {
	case err := <-done:
		result.Status, result.Err = d.classify(evt, name, hctx, err)
	case <-hctx.Done():
		if errors.Is(hctx.Err(), context.DeadlineExceeded) {
			result.Status = StatusTimedOut
		} else {
			// Publish context cancelled while the handler runs. The
			// handler is not aborted, only awaited up to its deadline.
			select {
			case err := <-done:
				result.Status, result.Err = d.classify(evt, name, hctx, err)
			case <-time.After(time.Until(deadline)):
				result.Status = StatusTimedOut
			}
		}
	}

	hcancel()
	<-d.slots
	result.Duration = time.Since(start)
	return result
}

// classify maps a handler's returned error to a terminal status. A
// handler that surfaces its own expired deadline is timed out, not
// failed, so the boundary does not depend on timer races.
func (d *dispatcher) classify(evt Event, name string, hctx context.Context, err error) (HandlerStatus, error) {
	if err == nil {
		return StatusSucceeded, nil
	}
	if errors.Is(err, context.DeadlineExceeded) && hctx.Err() == context.DeadlineExceeded {
		return StatusTimedOut, nil
	}
	return StatusFailed, &EventError{
		Event:     evt,
		Handler:   name,
		Message:   "handler failed",
		Err:       err,
		Timestamp: time.Now(),
	}
}

// close stops admission of new handlers and waits up to grace for
// running handlers to finish.
func (d *dispatcher) close(grace time.Duration) error {
	close(d.closeCh)

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(grace):
		return ErrShutdownTimeout
	}
}

func cancelledResult(sub *subscription) HandlerResult {
	return HandlerResult{
		Handler:        sub.name(),
		SubscriptionID: sub.id,
		Status:         StatusCancelled,
	}
}
