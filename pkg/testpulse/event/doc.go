// Package event provides the asynchronous event bus that decouples test
// execution from its consumers (loggers, notifiers, report generators).
//
// The package implements:
//   - Event interface with typed payloads and a type discriminator
//   - Registry mapping event types to ordered handler lists
//   - Dispatcher with a global concurrency bound and per-handler timeouts
//   - Bus facade for Subscribe/Unsubscribe/Publish with fault isolation
//   - DispatchOutcome aggregating per-handler terminal states
//
// Design properties:
//   - Handlers are started in registration order; completion order is
//     unspecified.
//   - A handler's failure (error or panic) is captured in the dispatch
//     outcome and never propagates to the publisher or to other handlers.
//   - Publish snapshots the subscriber list at call time; concurrent
//     subscribe/unsubscribe only affects later publishes.
//   - At most the configured bound of handlers run inside their timeout
//     budget at once, across all concurrent publishes. A timed-out
//     handler frees its slot immediately; its goroutine is signalled
//     via context and no longer counts against the bound.
package event
