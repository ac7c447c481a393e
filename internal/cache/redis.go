// Package cache provides the optional Redis-backed cache for rendered
// aggregate payloads. The service runs identically without it.
package cache

import (
	"context"
	"fmt"
	"time"

	"ridepulse/internal/analytics"
	"ridepulse/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	return redis.NewClient(options)
}

// RedisAggregateCache stores rendered aggregate JSON keyed by session
// and view, TTL-bound and invalidated when a session's dataset is
// replaced.
type RedisAggregateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAggregateCache(client *redis.Client, ttl time.Duration) *RedisAggregateCache {
	return &RedisAggregateCache{client: client, ttl: ttl}
}

func aggregateKey(sessionID, view string) string {
	return fmt.Sprintf("aggregate:%s:%s", sessionID, view)
}

// Get returns the cached payload or nil on a miss.
func (c *RedisAggregateCache) Get(ctx context.Context, sessionID, view string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, aggregateKey(sessionID, view)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get aggregate from redis: %w", err)
	}
	return val, nil
}

func (c *RedisAggregateCache) Set(ctx context.Context, sessionID, view string, payload []byte) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Set(ctx, aggregateKey(sessionID, view), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set aggregate in redis: %w", err)
	}
	return nil
}

// Invalidate drops every cached view of a session.
func (c *RedisAggregateCache) Invalidate(ctx context.Context, sessionID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	keys := make([]string, 0, len(analytics.Views))
	for _, view := range analytics.Views {
		keys = append(keys, aggregateKey(sessionID, view))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate session aggregates: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
