package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/news-crawler/pkg/ratelimit"
)

// fakeClock advances virtual time on Sleep and records each requested wait.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNew_RejectsNonPositiveQuota(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.New(0)
	require.Error(t, err)

	_, err = ratelimit.New(-3)
	require.Error(t, err)
}

func TestWaitIfNeeded_UnderQuotaDoesNotSleep(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, err := ratelimit.New(3, ratelimit.WithClock(clock))
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, limiter.WaitIfNeeded(context.Background()))
	}
	assert.Empty(t, clock.sleeps)
}

func TestWaitIfNeeded_ThirdCallWaitsForWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, err := ratelimit.New(2, ratelimit.WithClock(clock))
	require.NoError(t, err)

	start := clock.Now()
	require.NoError(t, limiter.WaitIfNeeded(context.Background()))
	clock.Advance(10 * time.Second)
	require.NoError(t, limiter.WaitIfNeeded(context.Background()))
	clock.Advance(5 * time.Second)

	require.NoError(t, limiter.WaitIfNeeded(context.Background()))

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, 45*time.Second, clock.sleeps[0])
	assert.GreaterOrEqual(t, clock.Now().Sub(start), time.Minute)
}

func TestWaitIfNeeded_OldRequestsExpire(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, err := ratelimit.New(1, ratelimit.WithClock(clock))
	require.NoError(t, err)

	require.NoError(t, limiter.WaitIfNeeded(context.Background()))
	clock.Advance(61 * time.Second)
	require.NoError(t, limiter.WaitIfNeeded(context.Background()))

	assert.Empty(t, clock.sleeps)
}

func TestWaitIfNeeded_CustomWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, err := ratelimit.New(1, ratelimit.WithClock(clock), ratelimit.WithWindow(time.Second))
	require.NoError(t, err)

	require.NoError(t, limiter.WaitIfNeeded(context.Background()))
	require.NoError(t, limiter.WaitIfNeeded(context.Background()))

	require.Len(t, clock.sleeps, 1)
	assert.Equal(t, time.Second, clock.sleeps[0])
}

func TestWaitIfNeeded_ContextCanceled(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	limiter, err := ratelimit.New(1, ratelimit.WithClock(clock))
	require.NoError(t, err)
	require.NoError(t, limiter.WaitIfNeeded(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, limiter.WaitIfNeeded(ctx), context.Canceled)
}

func TestWaitIfNeeded_RealClock(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimit.New(2, ratelimit.WithWindow(200*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	for range 3 {
		require.NoError(t, limiter.WaitIfNeeded(context.Background()))
	}
	assert.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
}
