package ports

import (
	"context"
	"time"
)

// RateDecision is the outcome of one rate limit check.
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	// ResetAfter is the time until the current window ends.
	ResetAfter time.Duration
}

// RateLimiter bounds how many turns a key (a bot ID) may run per window.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateDecision, error)
}
