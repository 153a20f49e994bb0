// Package cache implements the ephemeral counters and locks of the OTP
// issuer on Redis. Keys:
//
//	otp:cd:<phone>   send cooldown lock (SET NX)
//	otp:win:<phone>  long-window send counter (INCR + EXPIRE)
//	act:<key>        activity write throttle (SET NX)
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// RedisRateLimiter implements domain.RateLimiter.
type RedisRateLimiter struct {
	client *redis.Client
}

// NewRedisRateLimiter creates a Redis-backed rate limiter.
func NewRedisRateLimiter(client *redis.Client) domain.RateLimiter {
	return &RedisRateLimiter{client: client}
}

// AcquireCooldown implements domain.RateLimiter. SET NX makes the gate
// atomic: of two concurrent senders for the same phone exactly one wins.
func (l *RedisRateLimiter) AcquireCooldown(ctx context.Context, phone string, ttl time.Duration) (bool, time.Duration, error) {
	key := cooldownKey(phone)
	ok, err := l.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to acquire cooldown: %w", err)
	}
	if ok {
		return true, 0, nil
	}
	remaining, err := l.client.TTL(ctx, key).Result()
	if err != nil || remaining < 0 {
		remaining = ttl
	}
	return false, remaining, nil
}

// ReleaseCooldown implements domain.RateLimiter. Used to roll back the gate
// when SMS dispatch fails, so the caller may retry immediately.
func (l *RedisRateLimiter) ReleaseCooldown(ctx context.Context, phone string) error {
	return l.client.Del(ctx, cooldownKey(phone)).Err()
}

// IncrementWindow implements domain.RateLimiter. The counter's expiry is set
// only on first increment, so the window is fixed from the first send.
func (l *RedisRateLimiter) IncrementWindow(ctx context.Context, phone string, ttl time.Duration) (int64, time.Duration, error) {
	key := windowKey(phone)
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment send window: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, ttl, fmt.Errorf("failed to set window expiry: %w", err)
		}
		return count, ttl, nil
	}
	remaining, err := l.client.TTL(ctx, key).Result()
	if err != nil || remaining < 0 {
		remaining = ttl
	}
	return count, remaining, nil
}

// DecrementWindow implements domain.RateLimiter.
func (l *RedisRateLimiter) DecrementWindow(ctx context.Context, phone string) error {
	return l.client.Decr(ctx, windowKey(phone)).Err()
}

// AllowActivityWrite implements domain.RateLimiter. At most one caller per
// key wins within ttl; losing an update is acceptable, write amplification
// is not.
func (l *RedisRateLimiter) AllowActivityWrite(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, "act:"+key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check activity throttle: %w", err)
	}
	return ok, nil
}

func cooldownKey(phone string) string { return "otp:cd:" + phone }
func windowKey(phone string) string   { return "otp:win:" + phone }
