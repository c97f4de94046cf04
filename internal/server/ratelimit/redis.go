package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// hitScript counts a hit and gives the key a TTL whenever it has none, so a
// key is never left without expiry.
var hitScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// RedisLimiter shares counters between replicas. The first hit in a window
// creates the key and sets its TTL; the key vanishing ends the window.
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	max    int64
	period time.Duration
}

// NewRedisLimiter allows max hits per key in each period.
func NewRedisLimiter(client redis.Cmdable, max int, period time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: "ratelimit:otp:",
		max:    int64(max),
		period: period,
	}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Allow counts a hit for key and reports whether it is within the limit.
// Counting and expiry run as one script.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	n, err := hitScript.Run(ctx, l.client, []string{l.prefix + key}, l.period.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("redis hit: %w", err)
	}
	return n <= l.max, nil
}
