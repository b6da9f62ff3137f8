package ratelimit

import (
	"context"
	"sync"
	"time"
)

type windowEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter keeps counters in-process. Same window semantics as the
// Redis limiter; meant for single-instance dev setups and tests.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowEntry
	window  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(window time.Duration) *MemoryLimiter {
	if window <= 0 {
		window = time.Hour
	}
	return &MemoryLimiter{
		windows: make(map[string]*windowEntry),
		window:  window,
		now:     time.Now,
	}
}

var _ Limiter = (*MemoryLimiter)(nil)

func (l *MemoryLimiter) Allow(_ context.Context, userID, apiID string, limit int) (int, error) {
	key := userID + ":" + apiID
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.windows[key]
	if !ok || now.After(e.expiresAt) {
		e = &windowEntry{expiresAt: now.Add(l.window)}
		l.windows[key] = e
	}

	if e.count >= limit {
		return 0, ErrLimitExceeded
	}
	e.count++
	return limit - e.count, nil
}
