// Package vecmath provides the brute-force cosine search shared by the
// embedded vector indexes.
package vecmath

import (
	"math"
	"sort"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// CosineDistance returns 1 - cosine similarity of a and b.
// Zero vectors are at distance 1 from everything.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, domain.ErrDimensionMismatch
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

// NearestNeighbors ranks entries by cosine distance to query and returns the
// closest k. Ties keep entry order. Entries of a different dimension are skipped.
func NearestNeighbors(query []float32, entries []domain.VectorEntry, k int) []driven.VectorHit {
	if k <= 0 || len(entries) == 0 {
		return []driven.VectorHit{}
	}

	hits := make([]driven.VectorHit, 0, len(entries))
	for _, e := range entries {
		d, err := CosineDistance(query, e.Embedding)
		if err != nil {
			continue
		}
		hits = append(hits, driven.VectorHit{ID: e.ID, Distance: d})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
