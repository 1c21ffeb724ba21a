// Package redis provides a Redis-backed Limiter for the Sapo client.
//
// Window counters live in Redis keys scoped to the current fixed window,
// with a Lua script keeping the increment-and-expire pair atomic. This
// makes admission control safe across multiple client processes sharing
// one store's API budget.
package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/epoxyteam/sapo-client-sdk"
)

// Limiter is a Redis-backed admission limiter sharing the published Sapo
// ceilings (40/minute, 80000/day) across processes.
type Limiter struct {
	client    goredis.Cmdable
	keyPrefix string
	now       func() time.Time
}

var _ sapo.Limiter = (*Limiter)(nil)

// Option configures Limiter.
type Option func(*Limiter)

// WithKeyPrefix sets the Redis key prefix (default "sapo:ratelimit:").
// Use a per-store prefix when one Redis serves several stores.
func WithKeyPrefix(prefix string) Option {
	return func(l *Limiter) { l.keyPrefix = prefix }
}

// New creates a Redis-backed Limiter.
// The client must be a connected *goredis.Client or *goredis.ClusterClient.
func New(client goredis.Cmdable, opts ...Option) *Limiter {
	l := &Limiter{
		client:    client,
		keyPrefix: "sapo:ratelimit:",
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

const (
	minuteWindow = time.Minute
	dayWindow    = 24 * time.Hour
)

func (l *Limiter) minuteKey(now time.Time) string {
	return fmt.Sprintf("%sminute:%d", l.keyPrefix, now.Unix()/60)
}

func (l *Limiter) dayKey(now time.Time) string {
	return fmt.Sprintf("%sday:%d", l.keyPrefix, now.Unix()/86400)
}

// consumeScript increments a window counter and sets its expiry on first
// touch, so an abandoned window cleans itself up.
// KEYS[1] = window counter key
// ARGV[1] = ttl in seconds
var consumeScript = goredis.NewScript(`
local used = redis.call("INCR", KEYS[1])
if used == 1 then
    redis.call("EXPIRE", KEYS[1], tonumber(ARGV[1]))
end
return used
`)

// Check fails with *sapo.RateLimitError when either window is exhausted.
// The minute window is evaluated first. Redis errors are reported as
// admission failures so callers do not bypass the shared budget when the
// backend is unreachable.
func (l *Limiter) Check(ctx context.Context) error {
	now := l.now()
	vals, err := l.client.MGet(ctx, l.minuteKey(now), l.dayKey(now)).Result()
	if err != nil {
		return fmt.Errorf("sapo/redis: check: %w", err)
	}

	if counterValue(vals[0]) >= sapo.MinuteLimit {
		return limitExceeded("Minute rate limit exceeded", now, minuteWindow)
	}
	if counterValue(vals[1]) >= sapo.DailyLimit {
		return limitExceeded("Daily rate limit exceeded", now, dayWindow)
	}
	return nil
}

// Consume debits one request from both windows. Failures are swallowed;
// the server-side limit remains the true enforcer.
func (l *Limiter) Consume(ctx context.Context) {
	now := l.now()
	consumeScript.Run(ctx, l.client,
		[]string{l.minuteKey(now)},
		int(minuteWindow.Seconds()),
	)
	consumeScript.Run(ctx, l.client,
		[]string{l.dayKey(now)},
		int(dayWindow.Seconds()),
	)
}

// SyncRemaining overwrites the minute window's counter with the usage the
// server reported, correcting drift across processes.
func (l *Limiter) SyncRemaining(remaining int) {
	used := sapo.MinuteLimit - remaining
	if used < 0 {
		used = 0
	}
	now := l.now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	l.client.Set(ctx, l.minuteKey(now), used, windowTTL(now, minuteWindow))
}

// Snapshot reports the current minute-window state. On a Redis error the
// window is reported as full, matching a fresh window.
func (l *Limiter) Snapshot() sapo.RateLimit {
	now := l.now()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	remaining := sapo.MinuteLimit
	if used, err := l.client.Get(ctx, l.minuteKey(now)).Int(); err == nil {
		remaining = sapo.MinuteLimit - used
	}
	return sapo.RateLimit{
		Remaining: remaining,
		Limit:     sapo.MinuteLimit,
		Reset:     windowEnd(now, minuteWindow),
	}
}

func counterValue(v any) int {
	s, ok := v.(string)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func windowEnd(now time.Time, window time.Duration) time.Time {
	sec := int64(window.Seconds())
	return time.Unix((now.Unix()/sec+1)*sec, 0)
}

func windowTTL(now time.Time, window time.Duration) time.Duration {
	return windowEnd(now, window).Sub(now)
}

func limitExceeded(message string, now time.Time, window time.Duration) *sapo.RateLimitError {
	retryAfter := int(windowEnd(now, window).Sub(now).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &sapo.RateLimitError{
		APIError: sapo.APIError{
			Status:  429,
			Code:    "RATE_LIMIT_EXCEEDED",
			Message: message,
		},
		RetryAfter: retryAfter,
	}
}
