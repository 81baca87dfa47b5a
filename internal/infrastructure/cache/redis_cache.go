package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shopstack/backend/internal/domain/shared"
)

// RedisCache implements the tag-based cache on Redis. Each tag maps to
// a set of member keys; RemoveByTag drops the set plus every member in
// one round trip. Suitable for distributed deployments where multiple
// instances must see the same invalidations.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection before
// returning the cache.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{
		client:    client,
		keyPrefix: "cache:",
	}, nil
}

// NewRedisCacheWithClient wraps an existing Redis client. Useful for
// testing or when sharing a client across components.
func NewRedisCacheWithClient(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "cache:"
	}
	return &RedisCache{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (c *RedisCache) entryKey(key string) string {
	return c.keyPrefix + "entry:" + key
}

func (c *RedisCache) tagKey(tag string) string {
	return c.keyPrefix + "tag:" + tag
}

// Get returns the raw entry for key, or (nil, nil) on miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return value, nil
}

// Set stores value under key and registers it in each tag set. The tag
// sets carry a TTL slightly beyond the entry TTL so stale members age
// out even when RemoveByTag is never called for the tag.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	entryKey := c.entryKey(key)

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, entryKey, value, ttl)
	for _, tag := range tags {
		tagKey := c.tagKey(tag)
		pipe.SAdd(ctx, tagKey, entryKey)
		pipe.Expire(ctx, tagKey, ttl+time.Minute)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// RemoveByTag drops every entry registered under the tag along with the
// tag set itself.
func (c *RedisCache) RemoveByTag(ctx context.Context, tag string) error {
	tagKey := c.tagKey(tag)

	members, err := c.client.SMembers(ctx, tagKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read tag members: %w", err)
	}

	keys := append(members, tagKey)
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to remove tagged entries: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client for monitoring.
func (c *RedisCache) GetClient() *redis.Client {
	return c.client
}

var _ shared.Cache = (*RedisCache)(nil)
