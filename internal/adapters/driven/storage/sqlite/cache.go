package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// recommendationCache implements driven.RecommendationCache as a key-value table.
type recommendationCache struct {
	store *Store
}

var _ driven.RecommendationCache = (*recommendationCache)(nil)

// Read returns the cached entry for key, or nil if absent.
func (c *recommendationCache) Read(ctx context.Context, key string) (*domain.CacheEntry, error) {
	var value string
	err := c.store.db.QueryRowContext(ctx,
		"SELECT value FROM recommendation_cache WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal([]byte(value), &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &entry, nil
}

// Write replaces the cached entry for key.
func (c *recommendationCache) Write(ctx context.Context, key string, entry domain.CacheEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.store.db.ExecContext(ctx, `
		INSERT INTO recommendation_cache (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(value))
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Close is a no-op; the owning Store closes the database.
func (c *recommendationCache) Close() error {
	return nil
}
