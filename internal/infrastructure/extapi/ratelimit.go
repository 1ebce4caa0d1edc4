package extapi

import (
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Limiter enforces the platform request quota ahead of every page call.
// Two mechanisms feed it: a token bucket replenished across the rolling
// window, and a penalty window opened by explicit quota-exceeded
// responses. Acquire returns the larger of the two required waits so the
// mechanisms cannot defeat each other.
//
// One Limiter exists per platform+credential pair and is safe for
// concurrent fetchers. State is not persisted across restarts.
type Limiter struct {
	mu           sync.Mutex
	bucket       *rate.Limiter
	penalty      *backoff.ExponentialBackOff
	penaltyUntil time.Time
	now          func() time.Time
}

func NewLimiter(quota int, window, backoffInitial, backoffMax time.Duration) *Limiter {
	if quota <= 0 {
		quota = 1
	}
	if window <= 0 {
		window = time.Hour
	}
	if backoffInitial <= 0 {
		backoffInitial = time.Second
	}
	if backoffMax <= 0 {
		backoffMax = time.Minute
	}

	penalty := backoff.NewExponentialBackOff()
	penalty.InitialInterval = backoffInitial
	penalty.MaxInterval = backoffMax

	return &Limiter{
		bucket:  rate.NewLimiter(rate.Limit(float64(quota)/window.Seconds()), quota),
		penalty: penalty,
		now:     time.Now,
	}
}

// Acquire reserves one request and returns how long the caller must
// suspend before issuing it. The caller performs the actual wait.
func (l *Limiter) Acquire() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wait := l.bucket.ReserveN(now, 1).DelayFrom(now)
	if pen := l.penaltyUntil.Sub(now); pen > wait {
		wait = pen
	}
	return wait
}

// Penalize opens (or extends) the penalty window after an explicit
// quota-exceeded signal. Delay grows exponentially with jitter up to the
// configured cap; a longer platform-suggested retry-after wins.
func (l *Limiter) Penalize(retryAfter time.Duration) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	delay := l.penalty.NextBackOff()
	if retryAfter > delay {
		delay = retryAfter
	}

	until := l.now().Add(delay)
	if until.After(l.penaltyUntil) {
		l.penaltyUntil = until
	}
	return delay
}

// Settle resets the penalty series after a successful request so the
// next quota-exceeded response starts from the initial interval again.
func (l *Limiter) Settle() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.penalty.Reset()
}
