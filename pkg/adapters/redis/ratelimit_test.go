package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_FixedWindow(t *testing.T) {
	mr, client := setup(t)
	limiter := redis.NewRateLimiter(client, "", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "bot-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, "bot-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.ResetAfter, time.Duration(0))
	assert.True(t, mr.Exists(redis.DefaultRateLimitPrefix+"bot-1"))

	mr.FastForward(time.Minute + time.Second)

	d, err = limiter.Allow(ctx, "bot-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "counter expires with the window")
}
