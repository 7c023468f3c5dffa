package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"
)

const cachePrefix = "autoseed:asset:"

// RedisCache maps source URLs to re-hosted URLs in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(ctx context.Context, connectionURL string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

func cacheKey(sourceURL string) string {
	return fmt.Sprintf("%s%016x", cachePrefix, xxh3.HashString(sourceURL))
}

func (c *RedisCache) Get(ctx context.Context, sourceURL string) (string, bool, error) {
	v, err := c.client.Get(ctx, cacheKey(sourceURL)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, sourceURL, rehostedURL string) error {
	return c.client.Set(ctx, cacheKey(sourceURL), rehostedURL, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
