package driven

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// RecommendationCache stores computed recommendations by content key.
//
// The cache never expires or deletes entries on its own. Freshness is decided
// by the caller with domain.CacheEntry.IsFresh, so stale entries stay readable
// until overwritten.
type RecommendationCache interface {
	// Read returns the entry for key.
	// Returns nil and no error if the key has never been written.
	Read(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Write stores entry under key, replacing any previous entry.
	Write(ctx context.Context, key string, entry domain.CacheEntry) error

	// Close releases resources.
	Close() error
}
