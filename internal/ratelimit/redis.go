package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter whose counters live in Redis, so every
// instance behind a load balancer shares them.
type Redis struct {
	rdb    *redis.Client
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedis creates a limiter accepting limit requests per key per window.
func NewRedis(rdb *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{
		rdb:    rdb,
		prefix: redisKeyPrefix,
		max:    limit,
		window: window,
		now:    time.Now,
	}
}

// WithPrefix namespaces the counters, e.g. per route.
func (r *Redis) WithPrefix(prefix string) *Redis {
	r.prefix = prefix
	return r
}

func (r *Redis) Allow(ctx context.Context, key string) (Decision, error) {
	k := r.prefix + key

	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	// A negative TTL means the key was just created (or lost its expiry).
	ttl := pttl.Val()
	if ttl < 0 {
		if err := r.rdb.PExpire(ctx, k, r.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("rate limit expire %s: %w", key, err)
		}
		ttl = r.window
	}

	count := int(incr.Val())
	d := Decision{
		Allowed:   count <= r.max,
		Remaining: max(r.max-count, 0),
		ResetAt:   r.now().Add(ttl),
	}
	return d, nil
}
