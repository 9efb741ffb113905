// Package redis provides a Redis-backed recommendation cache.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// keyPrefix namespaces cache keys in a shared Redis database.
const keyPrefix = "related:rec:"

// Ensure Cache implements the interface.
var _ driven.RecommendationCache = (*Cache)(nil)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// DialTimeout bounds the initial connection check. Defaults to 5s.
	DialTimeout time.Duration
}

// Cache stores recommendation entries as JSON strings without a Redis TTL;
// freshness is decided by the reader.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (*Cache, error) {
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return &Cache{client: client}, nil
}

// Read returns the entry for key, or nil if absent.
func (c *Cache) Read(ctx context.Context, key string) (*domain.CacheEntry, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &entry, nil
}

// Write replaces the entry for key.
func (c *Cache) Write(ctx context.Context, key string, entry domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
