package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript does get/compare/incr/conditional-expire as one atomic unit.
// EXPIRE only fires on the window's first increment, so two concurrent first
// requests cannot leave a counter without a TTL and the window is never
// re-armed by later hits.
var allowScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local limit = tonumber(ARGV[1])
if current >= limit then
  return {0, current}
end
current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[2])
end
return {1, current}
`)

// RedisLimiter is a fixed-window limiter keyed ratelimit:{user}:{api}.
type RedisLimiter struct {
	rdb       *redis.Client
	keyPrefix string        // e.g. "ratelimit:"
	window    time.Duration // usually 1h
}

func NewRedisLimiter(rdb *redis.Client, keyPrefix string, window time.Duration) *RedisLimiter {
	if keyPrefix == "" {
		keyPrefix = "ratelimit:"
	}
	if window <= 0 {
		window = time.Hour
	}
	return &RedisLimiter{rdb: rdb, keyPrefix: keyPrefix, window: window}
}

var _ Limiter = (*RedisLimiter)(nil)

func (l *RedisLimiter) Allow(ctx context.Context, userID, apiID string, limit int) (int, error) {
	key := l.keyPrefix + userID + ":" + apiID
	ttl := int(l.window / time.Second)

	res, err := allowScript.Run(ctx, l.rdb, []string{key}, limit, ttl).Slice()
	if err != nil {
		return 0, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return 0, fmt.Errorf("rate limit script: unexpected reply %v", res)
	}

	allowed, _ := res[0].(int64)
	count, _ := res[1].(int64)

	if allowed == 0 {
		return 0, ErrLimitExceeded
	}
	return limit - int(count), nil
}
