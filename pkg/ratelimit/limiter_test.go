package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_FixedWindow(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(3, time.Minute)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.Allow(ctx, "bot-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 2-i, d.Remaining)
	}

	d, err := l.Allow(ctx, "bot-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, time.Minute, d.ResetAfter)

	other, err := l.Allow(ctx, "bot-2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "keys are limited independently")

	clock = clock.Add(time.Minute)
	d, err = l.Allow(ctx, "bot-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed, "a new window resets the count")
}

func TestLimiter_Defaults(t *testing.T) {
	l := New(0, 0)
	assert.Equal(t, DefaultLimit, l.limit)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestLimiter_SweepsIdleKeys(t *testing.T) {
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := New(1, time.Second)
	l.now = func() time.Time { return clock }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	clock = clock.Add(2 * time.Second)
	_, _ = l.Allow(ctx, "c")

	assert.Len(t, l.windows, 1)
}
