// Package cache provides Redis-backed counters for the API.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key this package writes.
const DefaultKeyPrefix = "dropline:"

// Options configures the Redis connection.
type Options struct {
	URL string

	// KeyPrefix is prepended to every key. Empty means DefaultKeyPrefix.
	KeyPrefix string

	// PoolSize overrides the connection pool size when positive.
	PoolSize int
}

// Cache wraps a Redis client. It is optional: the API runs without it and
// only loses rate limiting.
type Cache struct {
	client *redis.Client
	prefix string
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, opts Options) (*Cache, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.PoolSize = 10
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}
	redisOpts.MinIdleConns = 1
	redisOpts.PoolTimeout = 2 * time.Second
	redisOpts.ConnMaxIdleTime = 5 * time.Minute
	// The limiter fails open, so a slow Redis must not stall writes.
	redisOpts.ReadTimeout = 500 * time.Millisecond
	redisOpts.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	return &Cache{client: client, prefix: prefix}, nil
}

// Ping checks Redis connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client returns the underlying Redis client.
func (c *Cache) Client() *redis.Client {
	return c.client
}

func (c *Cache) key(parts ...string) string {
	k := c.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}
