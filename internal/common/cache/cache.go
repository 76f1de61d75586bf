// Package cache provides a redis-backed TTL cache for image lookup results.
// Callers treat the cache as best-effort: every error degrades to a miss.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"outfit-advisor/internal/common/config"
)

// Cache wraps a redis client. A nil *Cache is valid and always misses,
// which is how the service runs when no redis address is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a redis cache from config. Returns nil when no address is set.
func New(cfg config.CacheConfig) *Cache {
	if cfg.Address == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	return &Cache{
		client: rdb,
		ttl:    time.Duration(cfg.TTLMinutes) * time.Minute,
	}
}

// NewWithClient wraps an existing redis client (used by tests).
func NewWithClient(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Ping tests the redis connection.
func (c *Cache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the redis connection.
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Get returns the cached value for key and whether it was present. Errors
// count as misses.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores value under key with the configured TTL. Errors are dropped.
func (c *Cache) Set(ctx context.Context, key, value string) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, key, value, c.ttl).Err()
}

// Key builds a namespaced cache key from a raw lookup query.
func Key(namespace, query string) string {
	sum := sha1.Sum([]byte(query))
	return namespace + ":" + hex.EncodeToString(sum[:])
}
