package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/related-posts/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force implementation of driven.VectorIndex.
type VectorIndex struct {
	mu      sync.RWMutex
	entries []domain.VectorEntry
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Rebuild swaps in a copy of entries.
func (v *VectorIndex) Rebuild(_ context.Context, entries []domain.VectorEntry) error {
	next := make([]domain.VectorEntry, len(entries))
	for i, e := range entries {
		next[i] = domain.VectorEntry{ID: e.ID, Embedding: slices.Clone(e.Embedding)}
	}

	v.mu.Lock()
	v.entries = next
	v.mu.Unlock()
	return nil
}

// NearestNeighbors returns the k closest entries by cosine distance.
func (v *VectorIndex) NearestNeighbors(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return vecmath.NearestNeighbors(query, v.entries, k), nil
}

// Entries returns a copy of the index contents.
func (v *VectorIndex) Entries(_ context.Context) ([]domain.VectorEntry, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]domain.VectorEntry, len(v.entries))
	copy(out, v.entries)
	return out, nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}
