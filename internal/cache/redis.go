package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

const (
	maxJitter = 5 * time.Second

	// consecutive failures before the breaker opens
	breakerThreshold = 5
)

// RedisCache stores values under tagged keys. Invalidating a tag deletes every key
// registered with it.
type RedisCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "redis-cache",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerThreshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrCacheMiss)
			},
		}),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return r.breaker.Execute(func() ([]byte, error) {
		data, err := r.client.Get(ctx, cacheKey(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		if err != nil {
			return nil, fmt.Errorf("redis get failed: %w", err)
		}
		return data, nil
	})
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	_, err := r.breaker.Execute(func() ([]byte, error) {
		k := cacheKey(key)
		jitter := time.Duration(rand.Int63n(int64(maxJitter)))

		pipe := r.client.TxPipeline()
		pipe.Set(ctx, k, value, ttl+jitter)
		for _, tag := range tags {
			pipe.SAdd(ctx, tagKey(tag), k)
			pipe.Expire(ctx, tagKey(tag), ttl+maxJitter)
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("redis set failed: %w", err)
		}
		return nil, nil
	})
	return err
}

func (r *RedisCache) Invalidate(ctx context.Context, tags ...string) error {
	if len(tags) == 0 {
		return nil
	}

	_, err := r.breaker.Execute(func() ([]byte, error) {
		keys := make([]string, 0, len(tags))
		for _, tag := range tags {
			members, err := r.client.SMembers(ctx, tagKey(tag)).Result()
			if err != nil {
				return nil, fmt.Errorf("redis smembers failed: %w", err)
			}
			keys = append(keys, members...)
			keys = append(keys, tagKey(tag))
		}

		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return nil, fmt.Errorf("redis delete failed: %w", err)
		}
		return nil, nil
	})
	return err
}

func (r *RedisCache) State() gobreaker.State {
	return r.breaker.State()
}
