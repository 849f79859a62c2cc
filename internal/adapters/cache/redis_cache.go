package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

const redisKeyPrefix = "trustlens:result:"

// RedisCache is a Redis implementation of the CacheRepository interface.
// Expiry is delegated to Redis TTLs, so Cleanup has nothing to do.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(addr string, password string, db int, logger *zap.Logger, ttl time.Duration) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}, nil
}

// Get retrieves the stored result for a host identity
func (c *RedisCache) Get(ctx context.Context, identity string) (*core.CompositeResult, error) {
	payload, err := c.client.Get(ctx, redisKeyPrefix+identity).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var result core.CompositeResult
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// Set stores a result, replacing any previous record for the identity
func (c *RedisCache) Set(ctx context.Context, identity string, result *core.CompositeResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if err := c.client.Set(ctx, redisKeyPrefix+identity, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cache record: %w", err)
	}
	return nil
}

// Delete removes the record for a host identity
func (c *RedisCache) Delete(ctx context.Context, identity string) error {
	if err := c.client.Del(ctx, redisKeyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("failed to delete cache record: %w", err)
	}
	return nil
}

// Cleanup is a no-op; Redis expires records on its own
func (c *RedisCache) Cleanup(ctx context.Context) error {
	return nil
}

// Stop closes the Redis connection
func (c *RedisCache) Stop() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close Redis connection", zap.Error(err))
	}
}
