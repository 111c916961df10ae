package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func TestRedisFixedWindow(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	limiter := NewRedis(rdb, 5, 10*time.Minute)

	for i := 1; i <= 5; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("Allow() unexpected error: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("request %d rejected, want allowed", i)
		}
		if d.Remaining != 5-i {
			t.Errorf("request %d Remaining = %d, want %d", i, d.Remaining, 5-i)
		}
	}

	d, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow() unexpected error: %v", err)
	}
	if d.Allowed {
		t.Fatal("6th request allowed, want rejected")
	}
	if d.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", d.Remaining)
	}

	if ttl := mr.TTL(redisKeyPrefix + "1.2.3.4"); ttl <= 0 || ttl > 10*time.Minute {
		t.Errorf("key TTL = %s, want within (0, 10m]", ttl)
	}

	mr.FastForward(10 * time.Minute)

	d, err = limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("Allow() unexpected error: %v", err)
	}
	if !d.Allowed || d.Remaining != 4 {
		t.Errorf("after window Allow() = %+v, want allowed with 4 remaining", d)
	}
}

func TestRedisRestoresMissingExpiry(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	limiter := NewRedis(rdb, 5, time.Minute).WithPrefix("leads:")

	if err := mr.Set("leads:client", "2"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	d, err := limiter.Allow(ctx, "client")
	if err != nil {
		t.Fatalf("Allow() unexpected error: %v", err)
	}
	if !d.Allowed || d.Remaining != 2 {
		t.Errorf("Allow() = %+v, want allowed with 2 remaining", d)
	}
	if ttl := mr.TTL("leads:client"); ttl != time.Minute {
		t.Errorf("key TTL = %s, want %s", ttl, time.Minute)
	}
}

func TestRedisUnavailable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	limiter := NewRedis(rdb, 5, time.Minute)
	mr.Close()

	if _, err := limiter.Allow(context.Background(), "client"); err == nil {
		t.Error("Allow() with closed server returned nil error")
	}
}
