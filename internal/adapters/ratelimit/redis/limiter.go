// Package redis counts rate-limited attempts in Redis so that every server
// instance shares the same windows.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vncsmyrnk/patients/internal/core/domain"
)

const defaultKeyPrefix = "patients-rate:"

// The first hit in a window creates the key with a TTL; later hits increment
// it until the limit is reached.
var checkAndIncrement = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if current == false then
	redis.call("SET", KEYS[1], 1, "PX", ARGV[2])
	return 1
end
if tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call("INCR", KEYS[1])
return 1
`)

type Limiter struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewLimiter(client redis.UniversalClient, keyPrefix string) *Limiter {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &Limiter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (l *Limiter) key(k string) string {
	return fmt.Sprintf("%s%s", l.keyPrefix, k)
}

func (l *Limiter) CheckAndIncrement(ctx context.Context, key string, limit int, window time.Duration) error {
	ms := window.Milliseconds()
	if ms <= 0 {
		ms = 1
	}

	allowed, err := checkAndIncrement.Run(ctx, l.client, []string{l.key(key)}, limit, ms).Int()
	if err != nil {
		return fmt.Errorf("failed to run rate limit script: %w", err)
	}
	if allowed == 0 {
		return domain.ErrRateLimitExceeded
	}
	return nil
}
