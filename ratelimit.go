package sapo

import (
	"context"
	"math"
	"sync"
	"time"
)

// Published Sapo API ceilings: two independent hard caps.
const (
	MinuteLimit  = 40
	DailyLimit   = 80000
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

// RateLimit is a point-in-time view of the minute window. The daily window
// is enforced but not reported.
type RateLimit struct {
	// Remaining requests in the current minute window.
	Remaining int

	// Limit is the minute window capacity.
	Limit int

	// Reset is when the minute window refills.
	Reset time.Time
}

// Limiter is the admission-control contract the client calls through. The
// in-process RateLimiter is the default; a shared backend (see
// ratelimit/redis) can replace it for multi-process deployments.
type Limiter interface {
	// Check fails with *RateLimitError when either window is exhausted.
	// It sends nothing over the network for the local limiter.
	Check(ctx context.Context) error

	// Consume debits one request from both windows. Called after a
	// dispatch has produced a response.
	Consume(ctx context.Context)

	// SyncRemaining overwrites the minute window's remaining count with
	// the server's authoritative value.
	SyncRemaining(remaining int)

	// Snapshot reports the current minute-window state.
	Snapshot() RateLimit
}

// bucket is one fixed admission window: the counter resets to full capacity
// at window boundaries, it does not leak gradually.
type bucket struct {
	capacity int
	tokens   int
	window   time.Duration
	start    time.Time
}

func (b *bucket) refill(now time.Time) {
	if now.Sub(b.start) >= b.window {
		b.tokens = b.capacity
		b.start = now
	}
}

func (b *bucket) resetAt() time.Time {
	return b.start.Add(b.window)
}

// RateLimiter approximates the platform's server-side limits client-side, so
// exhausted callers fail fast instead of burning a round-trip on a 429. Two
// independent fixed windows, matching the coarse granularity the platform
// documents; the server remains the true enforcer.
type RateLimiter struct {
	mu     sync.Mutex
	minute bucket
	day    bucket
	now    func() time.Time
}

// NewRateLimiter creates a limiter with the published Sapo limits
// (40/minute, 80000/day), both windows starting full.
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(time.Now)
}

func newRateLimiter(now func() time.Time) *RateLimiter {
	t := now()
	return &RateLimiter{
		minute: bucket{capacity: MinuteLimit, tokens: MinuteLimit, window: minuteWindow, start: t},
		day:    bucket{capacity: DailyLimit, tokens: DailyLimit, window: dayWindow, start: t},
		now:    now,
	}
}

var _ Limiter = (*RateLimiter)(nil)

// Check refills any elapsed window, then fails if either window is
// exhausted. The minute window is evaluated first; whichever trips
// determines the reported message and retry-after. Check does not consume.
func (l *RateLimiter) Check(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute.refill(now)
	l.day.refill(now)

	if l.minute.tokens <= 0 {
		return limitExceeded("Minute rate limit exceeded", l.minute.resetAt(), now)
	}
	if l.day.tokens <= 0 {
		return limitExceeded("Daily rate limit exceeded", l.day.resetAt(), now)
	}
	return nil
}

// Consume debits both windows unconditionally. Counts may go transiently
// negative under concurrent requests; the next Check catches it.
func (l *RateLimiter) Consume(_ context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minute.tokens--
	l.day.tokens--
}

// SyncRemaining overwrites the minute window's count with a value observed
// in a response header, correcting local drift. The window start is not
// touched.
func (l *RateLimiter) SyncRemaining(remaining int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.minute.tokens = remaining
}

// Snapshot returns the minute-window state after a refill check.
func (l *RateLimiter) Snapshot() RateLimit {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute.refill(now)
	l.day.refill(now)

	return RateLimit{
		Remaining: l.minute.tokens,
		Limit:     l.minute.capacity,
		Reset:     l.minute.resetAt(),
	}
}

// Reset restores both windows to full capacity. Intended for tests.
func (l *RateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.minute = bucket{capacity: MinuteLimit, tokens: MinuteLimit, window: minuteWindow, start: now}
	l.day = bucket{capacity: DailyLimit, tokens: DailyLimit, window: dayWindow, start: now}
}

func limitExceeded(message string, reset, now time.Time) *RateLimitError {
	retryAfter := int(math.Ceil(reset.Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &RateLimitError{
		APIError: APIError{
			Status:  429,
			Code:    "RATE_LIMIT_EXCEEDED",
			Message: message,
		},
		RetryAfter: retryAfter,
	}
}
