package event

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// subscription is one registered handler bound to an event type.
// seq preserves registration order across the whole registry so that
// wildcard and type-specific handlers interleave deterministically.
type subscription struct {
	id        string
	seq       uint64
	eventType string // empty = all event types
	handler   Handler
}

// name returns the handler identity used in dispatch outcomes.
func (s *subscription) name() string {
	type named interface{ Name() string }
	if n, ok := s.handler.(named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s.handler)
}

// registry holds ordered handler lists keyed by event type discriminator.
// All mutations happen under mu; snapshots copy under a read lock so
// readers never hold the lock beyond the copy itself.
type registry struct {
	mu        sync.RWMutex
	byType    map[string][]*subscription
	wildcards []*subscription
	byID      map[string]*subscription
	nextSeq   uint64
}

func newRegistry() *registry {
	return &registry{
		byType: make(map[string][]*subscription),
		byID:   make(map[string]*subscription),
	}
}

// add registers a handler and returns the new subscription.
// An empty eventType subscribes to all events.
func (r *registry) add(eventType string, handler Handler) *subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSeq++
	sub := &subscription{
		id:        uuid.New().String(),
		seq:       r.nextSeq,
		eventType: eventType,
		handler:   handler,
	}

	r.byID[sub.id] = sub
	if eventType == "" {
		r.wildcards = append(r.wildcards, sub)
	} else {
		r.byType[eventType] = append(r.byType[eventType], sub)
	}

	return sub
}

// remove deletes a subscription by ID. Removing an unknown or already
// removed ID is a no-op, never an error.
func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.byID[id]
	if !ok {
		return
	}
	delete(r.byID, id)

	if sub.eventType == "" {
		r.wildcards = removeSub(r.wildcards, id)
		return
	}

	subs := removeSub(r.byType[sub.eventType], id)
	if len(subs) == 0 {
		delete(r.byType, sub.eventType)
	} else {
		r.byType[sub.eventType] = subs
	}
}

// removeSub splices one subscription out, preserving registration order.
func removeSub(subs []*subscription, id string) []*subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// snapshot returns a copy of the subscriptions matching an event type,
// ordered by registration sequence. Later registry mutations do not
// affect the returned slice.
func (r *registry) snapshot(eventType string) []*subscription {
	r.mu.RLock()
	typed := r.byType[eventType]
	subs := make([]*subscription, 0, len(typed)+len(r.wildcards))
	subs = append(subs, typed...)
	subs = append(subs, r.wildcards...)
	r.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool {
		return subs[i].seq < subs[j].seq
	})
	return subs
}

// count returns the number of live subscriptions.
func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
