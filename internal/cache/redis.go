// Package cache implements the temporary document cache behind
// port.DocumentCache. Redis is the primary backend; a process-local map
// backs development deployments without Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"invoflow/internal/config"
	"invoflow/internal/domain"
	"invoflow/internal/port"
)

const keyPrefix = "testsession:"

type redisCache struct {
	client *redis.Client
}

// NewRedis creates a Redis-backed DocumentCache. Expiry rides on the Redis
// key TTL, so a Get past the window is a plain miss.
func NewRedis(cfg *config.CacheConfig) (port.DocumentCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &redisCache{client: client}, nil
}

func (c *redisCache) Put(ctx context.Context, session *domain.TestSession, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling test session: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+session.TempFileID, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context, tempFileID string) (*domain.TestSession, error) {
	val, err := c.client.Get(ctx, keyPrefix+tempFileID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrContentExpired
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var session domain.TestSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("unmarshaling test session: %w", err)
	}
	return &session, nil
}

func (c *redisCache) Delete(ctx context.Context, tempFileID string) error {
	return c.client.Del(ctx, keyPrefix+tempFileID).Err()
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
