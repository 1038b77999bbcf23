package event

import "time"

// HandlerStatus is the terminal state of one handler invocation.
type HandlerStatus string

const (
	// StatusSucceeded means the handler returned nil.
	StatusSucceeded HandlerStatus = "succeeded"

	// StatusFailed means the handler returned an error or panicked.
	StatusFailed HandlerStatus = "failed"

	// StatusCancelled means the handler was skipped because the publish
	// context was cancelled or the bus was closed before it started.
	StatusCancelled HandlerStatus = "cancelled"

	// StatusTimedOut means the handler did not return within the
	// configured handler timeout. The handler goroutine is signalled via
	// context but not forcibly aborted.
	StatusTimedOut HandlerStatus = "timed_out"
)

// HandlerResult is the terminal outcome of one handler invocation.
type HandlerResult struct {
	Handler        string        // Handler name (NamedHandler or Go type name)
	SubscriptionID string        // Subscription the handler was invoked under
	Status         HandlerStatus // Terminal state
	Err            error         // Captured error for StatusFailed
	Duration       time.Duration // Time until the terminal state was reached
}

// DispatchOutcome aggregates per-handler results for one Publish call.
// A publish with zero subscribers yields an outcome with empty Results.
type DispatchOutcome struct {
	EventID   string
	EventType string
	StartedAt time.Time
	Duration  time.Duration
	Results   []HandlerResult
}

// Empty returns true if no handlers were dispatched.
func (o *DispatchOutcome) Empty() bool {
	return len(o.Results) == 0
}

// Succeeded returns the number of handlers that completed successfully.
func (o *DispatchOutcome) Succeeded() int {
	return o.countStatus(StatusSucceeded)
}

// Failed returns the number of handlers that failed or panicked.
func (o *DispatchOutcome) Failed() int {
	return o.countStatus(StatusFailed)
}

// Cancelled returns the number of handlers skipped before starting.
func (o *DispatchOutcome) Cancelled() int {
	return o.countStatus(StatusCancelled)
}

// TimedOut returns the number of handlers that exceeded the handler timeout.
func (o *DispatchOutcome) TimedOut() int {
	return o.countStatus(StatusTimedOut)
}

// Failures returns the results of handlers that did not succeed.
func (o *DispatchOutcome) Failures() []HandlerResult {
	var failures []HandlerResult
	for _, r := range o.Results {
		if r.Status != StatusSucceeded {
			failures = append(failures, r)
		}
	}
	return failures
}

func (o *DispatchOutcome) countStatus(status HandlerStatus) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
