package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/nikolayk812/atelier-cart/internal/port"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter per key and policy.
type RedisLimiter struct {
	client *redis.Client
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string, policy port.RateLimitPolicy) (port.RateLimitDecision, error) {
	if policy.Limit <= 0 || policy.Window <= 0 {
		return port.RateLimitDecision{}, fmt.Errorf("invalid rate limit policy %q", policy.Name)
	}

	k := limiterKey(policy.Name, key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return port.RateLimitDecision{}, fmt.Errorf("redis incr failed: %w", err)
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return port.RateLimitDecision{}, fmt.Errorf("redis pttl failed: %w", err)
	}

	// first hit of the window, or a key left without expiry
	if ttl < 0 {
		if err := l.client.PExpire(ctx, k, policy.Window).Err(); err != nil {
			return port.RateLimitDecision{}, fmt.Errorf("redis pexpire failed: %w", err)
		}
		ttl = policy.Window
	}

	if count > int64(policy.Limit) {
		return port.RateLimitDecision{
			Allowed:    false,
			RetryAfter: ttl,
			Message:    fmt.Sprintf("Too many attempts, please retry in %s.", ttl.Round(time.Second)),
		}, nil
	}

	return port.RateLimitDecision{
		Allowed:   true,
		Remaining: policy.Limit - int(count),
	}, nil
}

func limiterKey(policy, key string) string {
	return fmt.Sprintf("ratelimit:%s:%s", policy, key)
}
