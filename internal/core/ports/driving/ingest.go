package driving

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// IngestService adds posts to the record store and keeps the index current.
type IngestService interface {
	// Ingest fetches, embeds and stores the post addressed by key,
	// then rebuilds the vector index.
	Ingest(ctx context.Context, key string) (*domain.ContentRecord, error)

	// IngestMany ingests each key in order. Failures do not stop the batch;
	// they are returned per key.
	IngestMany(ctx context.Context, keys []string) map[string]error

	// ListKeys returns the keys of every ingested post.
	ListKeys(ctx context.Context) ([]string, error)
}
