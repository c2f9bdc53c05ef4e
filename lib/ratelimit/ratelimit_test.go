package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestThrottleSpacing(t *testing.T) {
	limiter := New(Config{
		ReviewDelay: 50 * time.Millisecond,
	})
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, limiter.Throttle(ctx, TierReview))
	require.NoError(t, limiter.Throttle(ctx, TierReview))
	require.NoError(t, limiter.Throttle(ctx, TierReview))
	elapsed := time.Since(start)

	// first permit is immediate, the next two each wait one delay
	require.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
}

func TestThrottleTiers(t *testing.T) {
	limiter := New(Config{
		ReviewDelay: 10 * time.Millisecond,
		BrandDelay:  60 * time.Millisecond,
	})
	ctx := context.Background()

	require.NoError(t, limiter.Throttle(ctx, TierBrand))
	start := time.Now()
	require.NoError(t, limiter.Throttle(ctx, TierReview))
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestThrottleCancellation(t *testing.T) {
	limiter := New(Config{
		ReviewDelay: time.Hour,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, limiter.Throttle(ctx, TierReview))
	err := limiter.Throttle(ctx, TierReview)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestThrottleConcurrentPermitsAreSerialized(t *testing.T) {
	limiter := New(Config{
		ReviewDelay: 20 * time.Millisecond,
	})
	ctx := context.Background()

	start := time.Now()
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func() {
			err := limiter.Throttle(ctx, TierReview)
			require.NoError(t, err)
			done <- struct{}{}
		}()
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	// 4 permits, 3 waits of 20ms between them
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}
