// Package ratelimit enforces per-(user, api) fixed-window quotas against a
// counter store.
package ratelimit

import (
	"context"
	"errors"
)

// ErrLimitExceeded is returned when the window's counter already reached the
// limit; the counter is not incremented in that case.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter checks and consumes one unit of a caller's quota for an Api.
// remaining is limit - count-after-increment, for observability headers.
// The check-then-increment must be atomic with respect to concurrent calls
// on the same (userID, apiID).
type Limiter interface {
	Allow(ctx context.Context, userID, apiID string, limit int) (remaining int, err error)
}
