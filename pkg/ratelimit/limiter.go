// Package ratelimit implements a sliding-window request throttle.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultWindow is the trailing interval the quota applies to.
const DefaultWindow = time.Minute

// Clock abstracts time for tests. Sleep must return early with ctx.Err() when
// the context is done.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

// Now carries a monotonic reading, so window arithmetic is immune to wall
// clock adjustments.
func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SystemClock is the real-time Clock.
var SystemClock Clock = systemClock{}

// Limiter admits at most quota requests per trailing window.
type Limiter struct {
	quota  int
	window time.Duration
	clock  Clock

	mu       sync.Mutex
	requests []time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithWindow overrides the default one-minute window.
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) { l.window = window }
}

// WithClock swaps the time source.
func WithClock(clock Clock) Option {
	return func(l *Limiter) { l.clock = clock }
}

// New returns a limiter for requestsPerMinute requests per window.
func New(requestsPerMinute int, opts ...Option) (*Limiter, error) {
	if requestsPerMinute <= 0 {
		return nil, fmt.Errorf("ratelimit: quota must be positive, got %d", requestsPerMinute)
	}
	l := &Limiter{
		quota:  requestsPerMinute,
		window: DefaultWindow,
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Quota returns the number of requests admitted per window.
func (l *Limiter) Quota() int { return l.quota }

// WaitIfNeeded blocks until a request can be made without exceeding the quota,
// then records it. The lock is held while sleeping so that callers sharing a
// limiter are admitted one at a time.
func (l *Limiter) WaitIfNeeded(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.evict(now)

	if len(l.requests) >= l.quota {
		wait := l.window - now.Sub(l.requests[0])
		if wait > 0 {
			if err := l.clock.Sleep(ctx, wait); err != nil {
				return err
			}
			now = l.clock.Now()
			l.evict(now)
		}
	}

	l.requests = append(l.requests, l.clock.Now())
	return nil
}

// evict drops timestamps that fell out of the window ending at now.
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.window)
	i := 0
	for i < len(l.requests) && !l.requests[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.requests = append(l.requests[:0], l.requests[i:]...)
	}
}
