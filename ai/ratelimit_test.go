package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLimiterUnlimited(t *testing.T) {
	limiter := NewTokenLimiter(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, limiter.Wait(context.Background(), 1_000_000))
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestTokenLimiterWithinBurst(t *testing.T) {
	// A full minute's budget is available as burst, so a single batch
	// well under it must not block.
	limiter := NewTokenLimiter(600_000)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 10_000))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTokenLimiterOversizedBatch(t *testing.T) {
	// Batches above the burst are clamped instead of rejected.
	limiter := NewTokenLimiter(60)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), 10_000))
	assert.Less(t, time.Since(start), time.Second)
}

func TestTokenLimiterContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	limited := NewTokenLimiter(60)
	require.NoError(t, limited.Wait(context.Background(), 60))
	assert.Error(t, limited.Wait(ctx, 60))

	unlimited := NewTokenLimiter(0)
	assert.ErrorIs(t, unlimited.Wait(ctx, 60), context.Canceled)
}

func TestTokenLimiterZeroTokens(t *testing.T) {
	limiter := NewTokenLimiter(60)
	assert.NoError(t, limiter.Wait(context.Background(), 0))
}
