// Package rediscache stores rendered artifacts in Redis so identical
// requests from any service instance skip the browser entirely.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	URL     string        // redis://[user:pass@]host:port/db
	Timeout time.Duration // dial, read and write timeout; zero keeps the client default
}

// Cache is a Redis-backed render cache. It is safe for concurrent use.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rediscache: parsing url: %w", err)
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("rediscache: connecting to %s: %w", opts.Addr, err)
	}
	return NewFromClient(client), nil
}

// NewFromClient wraps an existing client. The Cache owns it from then on
// and closes it in Close.
func NewFromClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get returns the stored artifact for key. A missing key is a miss, not an
// error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("rediscache: get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores data under key for ttl. A non-positive ttl stores without
// expiry.
func (c *Cache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("rediscache: set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (c *Cache) Close() error {
	return c.client.Close()
}
