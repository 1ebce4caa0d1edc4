package extapi

import (
	"testing"
	"time"
)

func TestLimiterEnforcesQuotaBudget(t *testing.T) {
	limiter := NewLimiter(2, time.Hour, time.Second, time.Minute)
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	waits := 0
	for i := 0; i < 5; i++ {
		if limiter.Acquire() > 0 {
			waits++
		}
	}

	// Budget 2, 5 required calls: at most 2 proceed before a wait shows up.
	if waits < 3 {
		t.Fatalf("Acquire() produced %d waits for 5 calls on budget 2", waits)
	}
}

func TestLimiterPenaltyWindow(t *testing.T) {
	limiter := NewLimiter(1000, time.Hour, time.Second, time.Minute)
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if wait := limiter.Acquire(); wait > 0 {
		t.Fatalf("Acquire() before penalty = %s, want no wait", wait)
	}

	delay := limiter.Penalize(0)
	if delay <= 0 {
		t.Fatalf("Penalize() delay = %s, want > 0", delay)
	}
	if wait := limiter.Acquire(); wait <= 0 {
		t.Fatalf("Acquire() inside penalty window = %s, want > 0", wait)
	}

	// Window expires once time moves past it.
	now = now.Add(delay + time.Second)
	if wait := limiter.Acquire(); wait > 0 {
		t.Fatalf("Acquire() after penalty window = %s, want no wait", wait)
	}
}

func TestLimiterPenalizeHonorsRetryAfter(t *testing.T) {
	limiter := NewLimiter(1000, time.Hour, time.Second, time.Minute)

	if delay := limiter.Penalize(10 * time.Minute); delay < 10*time.Minute {
		t.Fatalf("Penalize(10m) delay = %s, want >= 10m", delay)
	}
}

func TestLimiterSettleResetsPenaltySeries(t *testing.T) {
	limiter := NewLimiter(1000, time.Hour, time.Second, 10*time.Second)

	var grown time.Duration
	for i := 0; i < 5; i++ {
		grown = limiter.Penalize(0)
	}
	limiter.Settle()

	reset := limiter.Penalize(0)
	// First interval after a reset is at most initial*1.5 with jitter,
	// well below a fully grown series.
	if reset > 2*time.Second {
		t.Fatalf("Penalize() after Settle = %s (grown series was %s), want near initial", reset, grown)
	}
}
