package driven

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over record embeddings.
// The index is derived: it is only ever replaced wholesale from the RecordStore.
type VectorIndex interface {
	// Rebuild replaces the whole index with the given entries.
	// On error the previous contents remain searchable.
	Rebuild(ctx context.Context, entries []domain.VectorEntry) error

	// NearestNeighbors finds the k entries closest to the query vector,
	// ordered by ascending distance. The query's own record is not excluded.
	NearestNeighbors(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Entries returns the current index contents.
	Entries(ctx context.Context) ([]domain.VectorEntry, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ID is the matched record's row identifier.
	ID int64

	// Distance is the cosine distance to the query (0 = identical direction).
	Distance float64
}
