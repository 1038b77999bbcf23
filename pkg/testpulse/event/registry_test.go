package event

import (
	"context"
	"testing"
)

func nopHandler() Handler {
	return HandlerFunc(func(ctx context.Context, evt Event) error {
		return nil
	})
}

func TestRegistryAddPreservesOrder(t *testing.T) {
	r := newRegistry()

	subA := r.add("test", NamedHandler{HandlerName: "a", Handler: nopHandler()})
	subB := r.add("test", NamedHandler{HandlerName: "b", Handler: nopHandler()})
	subC := r.add("test", NamedHandler{HandlerName: "c", Handler: nopHandler()})

	snap := r.snapshot("test")
	if len(snap) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", len(snap))
	}
	for i, want := range []*subscription{subA, subB, subC} {
		if snap[i].id != want.id {
			t.Errorf("expected %s at position %d, got %s", want.name(), i, snap[i].name())
		}
	}
}

func TestRegistryRemovePreservesOrder(t *testing.T) {
	r := newRegistry()

	subA := r.add("test", NamedHandler{HandlerName: "a", Handler: nopHandler()})
	subB := r.add("test", NamedHandler{HandlerName: "b", Handler: nopHandler()})
	subC := r.add("test", NamedHandler{HandlerName: "c", Handler: nopHandler()})

	r.remove(subB.id)

	snap := r.snapshot("test")
	if len(snap) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(snap))
	}
	if snap[0].id != subA.id || snap[1].id != subC.id {
		t.Errorf("expected a, c after removing b, got %s, %s", snap[0].name(), snap[1].name())
	}
}

func TestRegistryRemoveUnknownIsNoop(t *testing.T) {
	r := newRegistry()
	sub := r.add("test", nopHandler())

	r.remove("no-such-id")
	r.remove(sub.id)
	r.remove(sub.id) // already removed

	if r.count() != 0 {
		t.Errorf("expected empty registry, got %d subscriptions", r.count())
	}
	if len(r.snapshot("test")) != 0 {
		t.Error("expected empty snapshot after removal")
	}
}

func TestRegistryWildcardInterleavesBySequence(t *testing.T) {
	r := newRegistry()

	subA := r.add("test", NamedHandler{HandlerName: "a", Handler: nopHandler()})
	subB := r.add("", NamedHandler{HandlerName: "b", Handler: nopHandler()}) // all types
	subC := r.add("test", NamedHandler{HandlerName: "c", Handler: nopHandler()})

	snap := r.snapshot("test")
	if len(snap) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", len(snap))
	}
	for i, want := range []*subscription{subA, subB, subC} {
		if snap[i].id != want.id {
			t.Errorf("expected %s at position %d, got %s", want.name(), i, snap[i].name())
		}
	}

	if len(r.snapshot("other")) != 1 {
		t.Error("expected wildcard subscription to match other types")
	}
}

func TestRegistrySnapshotIsolation(t *testing.T) {
	r := newRegistry()
	sub := r.add("test", nopHandler())

	snap := r.snapshot("test")
	r.remove(sub.id)

	if len(snap) != 1 {
		t.Errorf("expected captured snapshot to be unaffected by removal, got %d", len(snap))
	}
}

func TestSubscriptionName(t *testing.T) {
	r := newRegistry()

	named := r.add("test", NamedHandler{HandlerName: "notifier", Handler: nopHandler()})
	if named.name() != "notifier" {
		t.Errorf("expected name notifier, got %s", named.name())
	}

	anon := r.add("test", nopHandler())
	if anon.name() == "" {
		t.Error("expected type-derived name for unnamed handler")
	}
}
