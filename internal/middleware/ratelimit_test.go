package middleware

import (
	"testing"
	"time"
)

func TestRateLimiter_AllowAndDeny(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithNow(2, time.Minute, func() time.Time { return clock })

	if !rl.Allow("ip") {
		t.Fatalf("expected allow")
	}
	if !rl.Allow("ip") {
		t.Fatalf("expected allow")
	}
	if rl.Allow("ip") {
		t.Fatalf("expected deny after limit")
	}

	clock = clock.Add(time.Minute + time.Second)
	if !rl.Allow("ip") {
		t.Fatalf("expected allow after window reset")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiterWithNow(1, time.Minute, func() time.Time { return clock })

	if !rl.Allow("a") {
		t.Fatalf("expected allow for a")
	}
	if rl.Allow("a") {
		t.Fatalf("expected deny for a")
	}
	if !rl.Allow("b") {
		t.Fatalf("expected b unaffected by a")
	}
}
