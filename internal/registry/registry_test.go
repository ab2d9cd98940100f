package registry

import (
	"testing"

	"wakemeup/internal/wire"
)

func TestConnsRegisterLookup(t *testing.T) {
	conns := NewConns()

	if _, ok := conns.Lookup(1); ok {
		t.Fatalf("expected empty registry")
	}

	out := make(chan wire.WakeRequest, 1)
	conns.Register(1, out)
	got, ok := conns.Lookup(1)
	if !ok || got != out {
		t.Fatalf("expected registered channel back")
	}
}

func TestConnsLastConnectWins(t *testing.T) {
	conns := NewConns()
	first := make(chan wire.WakeRequest, 1)
	second := make(chan wire.WakeRequest, 1)

	conns.Register(1, first)
	conns.Register(1, second)

	got, ok := conns.Lookup(1)
	if !ok || got != second {
		t.Fatalf("expected replacement channel to win")
	}

	// The old session shutting down late must not evict the new one.
	conns.Unregister(1, first)
	if got, ok := conns.Lookup(1); !ok || got != second {
		t.Fatalf("stale unregister evicted the new session")
	}

	conns.Unregister(1, second)
	if _, ok := conns.Lookup(1); ok {
		t.Fatalf("expected entry removed")
	}
}

func TestConnsUserIDs(t *testing.T) {
	conns := NewConns()
	conns.Register(3, make(chan wire.WakeRequest))
	conns.Register(5, make(chan wire.WakeRequest))

	ids := conns.UserIDs()
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
	seen := map[int64]bool{}
	for _, id := range ids {
		seen[id] = true
	}
	if !seen[3] || !seen[5] {
		t.Fatalf("expected ids 3 and 5, got %v", ids)
	}
}

func TestPendingTakeRemoves(t *testing.T) {
	pending := NewPending()
	ack := make(chan bool, 1)
	pending.Register(1, ack)

	got, ok := pending.Take(1)
	if !ok || got != ack {
		t.Fatalf("expected registered ack channel")
	}
	if _, ok := pending.Take(1); ok {
		t.Fatalf("expected second take to find nothing")
	}
}

func TestPendingOverwrite(t *testing.T) {
	pending := NewPending()
	first := make(chan bool, 1)
	second := make(chan bool, 1)

	pending.Register(1, first)
	pending.Register(1, second)

	got, ok := pending.Take(1)
	if !ok || got != second {
		t.Fatalf("expected the overwriting wake call's channel")
	}
}

func TestPendingCancelGuarded(t *testing.T) {
	pending := NewPending()
	first := make(chan bool, 1)
	second := make(chan bool, 1)

	pending.Register(1, first)
	pending.Register(1, second)

	// First caller timing out must not cancel the second caller's slot.
	pending.Cancel(1, first)
	if got, ok := pending.Take(1); !ok || got != second {
		t.Fatalf("stale cancel removed the active entry")
	}

	pending.Register(2, first)
	pending.Cancel(2, first)
	if _, ok := pending.Take(2); ok {
		t.Fatalf("expected cancel to remove own entry")
	}
}
