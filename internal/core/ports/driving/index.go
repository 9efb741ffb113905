package driving

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// IndexService maintains the vector index.
type IndexService interface {
	// RebuildFrom replaces the vector index with the record store's embeddings.
	RebuildFrom(ctx context.Context) error

	// Check compares the vector index with the record store.
	Check(ctx context.Context) (domain.IndexReport, error)
}
