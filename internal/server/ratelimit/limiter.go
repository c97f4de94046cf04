// Package ratelimit throttles the OTP routes per client address with a fixed
// window counter.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter reports whether one more request under key fits the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Noop admits everything.
type Noop struct{}

func (Noop) Allow(context.Context, string) (bool, error) { return true, nil }

type window struct {
	count int
	reset time.Time
}

// MemoryLimiter keeps counters in process memory. Suitable for a single
// instance; use RedisLimiter when several replicas share traffic.
type MemoryLimiter struct {
	max    int
	period time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

func NewMemoryLimiter(max int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		max:     max,
		period:  period,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(l.period)}
		l.windows[key] = w
		l.sweep(now)
	}
	w.count++
	return w.count <= l.max, nil
}

// sweep drops expired windows so idle clients do not accumulate.
func (l *MemoryLimiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if !now.Before(w.reset) {
			delete(l.windows, k)
		}
	}
}
