package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// Ensure RecommendationCache implements the interface.
var _ driven.RecommendationCache = (*RecommendationCache)(nil)

// RecommendationCache is an in-memory implementation of driven.RecommendationCache.
type RecommendationCache struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

// NewRecommendationCache creates an empty in-memory cache.
func NewRecommendationCache() *RecommendationCache {
	return &RecommendationCache{
		entries: make(map[string]domain.CacheEntry),
	}
}

// Read returns the entry for key, or nil if absent.
func (c *RecommendationCache) Read(_ context.Context, key string) (*domain.CacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	entry.Payload = slices.Clone(entry.Payload)
	return &entry, nil
}

// Write replaces the entry for key.
func (c *RecommendationCache) Write(_ context.Context, key string, entry domain.CacheEntry) error {
	entry.Payload = slices.Clone(entry.Payload)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	return nil
}

// Close is a no-op.
func (c *RecommendationCache) Close() error {
	return nil
}
