// Package ratelimit provides an in-process fixed-window limiter for webhook turns.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/chatflow/pkg/ports"
)

const (
	// DefaultLimit is the number of turns allowed per bot per window.
	DefaultLimit = 60
	// DefaultWindow is the length of a rate limit window.
	DefaultWindow = time.Minute
)

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window counter per key. Safe for concurrent use.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

// New creates a limiter allowing limit requests per window per key.
// Non-positive arguments fall back to the defaults.
func New(limit int, per time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if per <= 0 {
		per = DefaultWindow
	}
	return &Limiter{
		limit:   limit,
		window:  per,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow counts one request for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (ports.RateDecision, error) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.sweep(now)
		w = &window{start: now}
		l.windows[key] = w
	}
	w.count++

	remaining := l.limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateDecision{
		Allowed:    w.count <= l.limit,
		Limit:      l.limit,
		Remaining:  remaining,
		ResetAfter: l.window - now.Sub(w.start),
	}, nil
}

// sweep drops expired windows so idle keys do not accumulate.
func (l *Limiter) sweep(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, k)
		}
	}
}
