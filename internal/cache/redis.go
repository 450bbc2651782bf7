// Package cache stores short-lived JSON values in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stwalsh4118/estatedesk/internal/config"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// JSONCache keeps JSON-encoded values under a key prefix with a fixed TTL.
type JSONCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewJSONCache creates a cache namespace. A zero ttl stores keys without expiry.
func NewJSONCache(client *redis.Client, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *JSONCache) key(k string) string {
	return c.prefix + k
}

// Get decodes the value stored under k into dest. It reports false, nil on a miss.
func (c *JSONCache) Get(ctx context.Context, k string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cache key %s: %w", c.key(k), err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A value that no longer decodes is treated as a miss and dropped.
		_ = c.client.Del(ctx, c.key(k)).Err()
		return false, nil
	}
	return true, nil
}

// Set stores v under k.
func (c *JSONCache) Set(ctx context.Context, k string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value for %s: %w", c.key(k), err)
	}

	if err := c.client.Set(ctx, c.key(k), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", c.key(k), err)
	}
	return nil
}

// Delete removes k. Missing keys are not an error.
func (c *JSONCache) Delete(ctx context.Context, k string) error {
	if err := c.client.Del(ctx, c.key(k)).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", c.key(k), err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (c *JSONCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
