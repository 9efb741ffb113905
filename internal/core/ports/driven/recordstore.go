package driven

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// RecordStore persists content records keyed by content key.
// It is the source of truth the VectorIndex is rebuilt from.
type RecordStore interface {
	// Upsert inserts the record, or replaces title, description and embedding
	// when the key already exists. The record's ID is set on return.
	Upsert(ctx context.Context, record *domain.ContentRecord) error

	// Get retrieves a record by content key.
	// Returns domain.ErrNotFound if the key was never ingested.
	Get(ctx context.Context, key string) (*domain.ContentRecord, error)

	// GetDescription returns the stored description for a key.
	// Returns domain.ErrNotFound if the key was never ingested.
	GetDescription(ctx context.Context, key string) (string, error)

	// Resolve maps row identifiers to (id, key, title).
	// Output order is unspecified and unknown ids are skipped.
	Resolve(ctx context.Context, ids []int64) ([]domain.RecordRef, error)

	// All returns every record, including embeddings.
	All(ctx context.Context) ([]domain.ContentRecord, error)

	// ListKeys returns every known content key.
	ListKeys(ctx context.Context) ([]string, error)
}
