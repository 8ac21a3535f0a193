// Package cache provides a small Redis-backed cache behind an interface, so
// callers (and tests) never depend on the redis client directly.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the port consumed by the read-through store decorators and by the
// idempotency replay in the HTTP layer.
type Cache interface {
	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Get returns the cached string, or ("", nil) on a miss. Only real
	// transport errors are returned as errors.
	Get(ctx context.Context, key string) (string, error)

	// GenerateKey namespaces a key by service and operation, e.g.
	// "orders:customer:C1", so several services can share one Redis.
	GenerateKey(operation, key string) string
}

type redisCache struct {
	client      *redis.Client
	serviceName string
}

// NewRedisCache connects a Cache to the Redis instance at addr.
func NewRedisCache(addr, serviceName string) Cache {
	return &redisCache{
		client:      redis.NewClient(&redis.Options{Addr: addr}),
		serviceName: serviceName,
	}
}

func (r *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *redisCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, key)
}
