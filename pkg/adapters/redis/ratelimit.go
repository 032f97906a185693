package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/chatflow/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultRateLimitPrefix namespaces rate limit counters.
const DefaultRateLimitPrefix = "chatflow:ratelimit:"

// fixedWindowScript increments the counter and starts its window on first use.
// Returns {count, pttl}.
var fixedWindowScript = backend.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {count, redis.call("PTTL", KEYS[1])}
`)

// RateLimiter implements ports.RateLimiter with a fixed window counter shared by all replicas.
type RateLimiter struct {
	client *backend.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRateLimiter creates a limiter allowing limit requests per window per key.
func NewRateLimiter(client *backend.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	if prefix == "" {
		prefix = DefaultRateLimitPrefix
	}
	return &RateLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow counts one request for key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (ports.RateDecision, error) {
	res, err := fixedWindowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return ports.RateDecision{}, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if len(res) != 2 {
		return ports.RateDecision{}, fmt.Errorf("unexpected rate limit reply: %v", res)
	}

	count, pttl := int(res[0]), time.Duration(res[1])*time.Millisecond
	if pttl < 0 {
		pttl = l.window
	}
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return ports.RateDecision{
		Allowed:    count <= l.limit,
		Limit:      l.limit,
		Remaining:  remaining,
		ResetAfter: pttl,
	}, nil
}
