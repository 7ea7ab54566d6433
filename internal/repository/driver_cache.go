package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when no mapping is cached.
var ErrCacheMiss = errors.New("driver cache miss")

// DriverCache maps normalized emails to driver ids. Both are immutable once a
// driver is registered, so a cached entry never goes stale; the record itself
// is always read from the store.
type DriverCache interface {
	GetDriverID(ctx context.Context, email string) (string, error)
	SetDriverID(ctx context.Context, email, driverID string) error
}

type redisDriverCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDriverCache returns a Redis-backed email to driver id cache.
func NewRedisDriverCache(client *redis.Client, ttl time.Duration) DriverCache {
	return &redisDriverCache{client: client, ttl: ttl}
}

func emailKey(email string) string { return "driver:email:" + email }

func (c *redisDriverCache) GetDriverID(ctx context.Context, email string) (string, error) {
	driverID, err := c.client.Get(ctx, emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("read cached driver id: %w", err)
	}
	return driverID, nil
}

func (c *redisDriverCache) SetDriverID(ctx context.Context, email, driverID string) error {
	if err := c.client.Set(ctx, emailKey(email), driverID, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache driver id: %w", err)
	}
	return nil
}
