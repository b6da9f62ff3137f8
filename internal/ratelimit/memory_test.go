package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterExhaustion(t *testing.T) {
	l := NewMemoryLimiter(time.Hour)
	ctx := context.Background()

	const limit = 5
	for i := 0; i < limit; i++ {
		remaining, err := l.Allow(ctx, "u1", "a1", limit)
		require.NoError(t, err)
		assert.Equal(t, limit-i-1, remaining)
	}

	_, err := l.Allow(ctx, "u1", "a1", limit)
	assert.ErrorIs(t, err, ErrLimitExceeded)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(time.Hour)
	ctx := context.Background()

	_, err := l.Allow(ctx, "u1", "a1", 1)
	require.NoError(t, err)
	_, err = l.Allow(ctx, "u1", "a1", 1)
	require.ErrorIs(t, err, ErrLimitExceeded)

	// a different user or api has its own window
	_, err = l.Allow(ctx, "u2", "a1", 1)
	assert.NoError(t, err)
	_, err = l.Allow(ctx, "u1", "a2", 1)
	assert.NoError(t, err)
}

func TestMemoryLimiterWindowReset(t *testing.T) {
	now := time.Now()
	l := NewMemoryLimiter(time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := l.Allow(ctx, "u1", "a1", 1)
	require.NoError(t, err)
	_, err = l.Allow(ctx, "u1", "a1", 1)
	require.ErrorIs(t, err, ErrLimitExceeded)

	// counter resets after the window TTL elapses
	now = now.Add(time.Hour + time.Second)
	remaining, err := l.Allow(ctx, "u1", "a1", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestMemoryLimiterConcurrentNeverExceedsLimit(t *testing.T) {
	l := NewMemoryLimiter(time.Hour)
	ctx := context.Background()

	const (
		limit   = 10
		callers = 100
	)

	var allowed atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := l.Allow(ctx, "u1", "a1", limit); err == nil {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(limit), allowed.Load(),
		"racing callers must never exceed the window limit")
}
