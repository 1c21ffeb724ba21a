package sapo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedLimiter() (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	return newRateLimiter(clock.now), clock
}

func TestCheck_PassesWhileMinuteBudgetRemains(t *testing.T) {
	limiter, _ := newClockedLimiter()
	ctx := context.Background()

	for i := 0; i < MinuteLimit-1; i++ {
		require.NoError(t, limiter.Check(ctx))
		limiter.Consume(ctx)
	}
	assert.NoError(t, limiter.Check(ctx))
}

func TestCheck_RejectsWhenMinuteExhausted(t *testing.T) {
	limiter, _ := newClockedLimiter()
	ctx := context.Background()

	for i := 0; i < MinuteLimit; i++ {
		limiter.Consume(ctx)
	}

	err := limiter.Check(ctx)
	require.Error(t, err)

	var rle *RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, 429, rle.Status)
	assert.Equal(t, "Minute rate limit exceeded", rle.Message)
	assert.Greater(t, rle.RetryAfter, 0)
	assert.LessOrEqual(t, rle.RetryAfter, 60)
}

func TestCheck_RetryAfterShrinksAsWindowAges(t *testing.T) {
	limiter, clock := newClockedLimiter()
	ctx := context.Background()

	for i := 0; i < MinuteLimit; i++ {
		limiter.Consume(ctx)
	}

	clock.advance(45 * time.Second)

	var rle *RateLimitError
	require.True(t, errors.As(limiter.Check(ctx), &rle))
	assert.Equal(t, 15, rle.RetryAfter)
}

func TestCheck_MinuteWindowRefillsAllAtOnce(t *testing.T) {
	limiter, clock := newClockedLimiter()
	ctx := context.Background()

	for i := 0; i < MinuteLimit; i++ {
		limiter.Consume(ctx)
	}
	require.Error(t, limiter.Check(ctx))

	// One second short: still rejected, nothing leaks back gradually.
	clock.advance(59 * time.Second)
	require.Error(t, limiter.Check(ctx))
	assert.Equal(t, 0, limiter.Snapshot().Remaining)

	clock.advance(time.Second)
	require.NoError(t, limiter.Check(ctx))
	assert.Equal(t, MinuteLimit, limiter.Snapshot().Remaining)
}

func TestCheck_DailyLimitHoldsAcrossMinuteWindows(t *testing.T) {
	limiter, clock := newClockedLimiter()
	ctx := context.Background()

	// Exhaust the daily budget directly.
	limiter.mu.Lock()
	limiter.day.tokens = 0
	limiter.mu.Unlock()

	// A fresh minute window does not help.
	clock.advance(time.Minute)

	var rle *RateLimitError
	require.True(t, errors.As(limiter.Check(ctx), &rle))
	assert.Equal(t, "Daily rate limit exceeded", rle.Message)
	assert.Greater(t, rle.RetryAfter, 60)
}

func TestConsume_DebitsBothWindows(t *testing.T) {
	limiter, _ := newClockedLimiter()
	ctx := context.Background()

	limiter.Consume(ctx)
	limiter.Consume(ctx)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Equal(t, MinuteLimit-2, limiter.minute.tokens)
	assert.Equal(t, DailyLimit-2, limiter.day.tokens)
}

func TestSyncRemaining_OverwritesMinuteOnly(t *testing.T) {
	limiter, _ := newClockedLimiter()
	ctx := context.Background()

	limiter.Consume(ctx)
	before := limiter.Snapshot()

	limiter.SyncRemaining(5)

	snap := limiter.Snapshot()
	assert.Equal(t, 5, snap.Remaining)
	assert.Equal(t, before.Reset, snap.Reset)

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.Equal(t, DailyLimit-1, limiter.day.tokens)
}

func TestSyncRemaining_ZeroBlocksNextCheck(t *testing.T) {
	limiter, _ := newClockedLimiter()
	ctx := context.Background()

	limiter.SyncRemaining(0)
	require.Error(t, limiter.Check(ctx))

	limiter.SyncRemaining(1)
	require.NoError(t, limiter.Check(ctx))
}

func TestSnapshot_ReportsMinuteWindow(t *testing.T) {
	limiter, clock := newClockedLimiter()

	snap := limiter.Snapshot()
	assert.Equal(t, MinuteLimit, snap.Remaining)
	assert.Equal(t, MinuteLimit, snap.Limit)
	assert.Equal(t, clock.t.Add(time.Minute), snap.Reset)
}

func TestReset_RestoresBothWindows(t *testing.T) {
	limiter, _ := newClockedLimiter()
	ctx := context.Background()

	for i := 0; i < MinuteLimit; i++ {
		limiter.Consume(ctx)
	}
	require.Error(t, limiter.Check(ctx))

	limiter.Reset()
	require.NoError(t, limiter.Check(ctx))
	assert.Equal(t, MinuteLimit, limiter.Snapshot().Remaining)
}
