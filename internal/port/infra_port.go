package port

import (
	"context"
	"time"
)

type CacheInvalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

type TaggedCache interface {
	CacheInvalidator
	// Get returns cache.ErrCacheMiss when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error
}

type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
}

type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
	Message    string
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, policy RateLimitPolicy) (RateLimitDecision, error)
}
