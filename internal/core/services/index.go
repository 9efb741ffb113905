package services

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// Ensure IndexMaintainer implements the interface.
var _ driving.IndexService = (*IndexMaintainer)(nil)

// IndexMaintainer keeps the vector index a projection of the record store.
type IndexMaintainer struct {
	records driven.RecordStore
	vectors driven.VectorIndex
	metrics driven.MetricsRecorder
}

// NewIndexMaintainer creates a new index maintainer.
func NewIndexMaintainer(records driven.RecordStore, vectors driven.VectorIndex) *IndexMaintainer {
	return &IndexMaintainer{
		records: records,
		vectors: vectors,
	}
}

// SetMetrics sets the recorder for rebuild events.
func (m *IndexMaintainer) SetMetrics(r driven.MetricsRecorder) {
	m.metrics = r
}

// RebuildFrom replaces the vector index with every stored embedding.
func (m *IndexMaintainer) RebuildFrom(ctx context.Context) error {
	records, err := m.records.All(ctx)
	if err != nil {
		m.failed()
		return fmt.Errorf("list records: %w", err)
	}

	entries := domain.VectorEntries(records)
	if err := m.vectors.Rebuild(ctx, entries); err != nil {
		m.failed()
		return fmt.Errorf("rebuild vector index: %w", err)
	}

	logger.Debug("Vector index rebuilt with %d entries", len(entries))
	if m.metrics != nil {
		m.metrics.IndexRebuilt(len(entries))
	}
	return nil
}

// Check reports how the vector index differs from the record store.
func (m *IndexMaintainer) Check(ctx context.Context) (domain.IndexReport, error) {
	records, err := m.records.All(ctx)
	if err != nil {
		return domain.IndexReport{}, fmt.Errorf("list records: %w", err)
	}
	entries, err := m.vectors.Entries(ctx)
	if err != nil {
		return domain.IndexReport{}, fmt.Errorf("list index entries: %w", err)
	}

	indexed := make(map[int64][]float32, len(entries))
	for _, e := range entries {
		indexed[e.ID] = e.Embedding
	}

	report := domain.IndexReport{Records: len(records), Entries: len(entries)}
	stored := make(map[int64]bool, len(records))
	for _, rec := range records {
		stored[rec.ID] = true
		if len(rec.Embedding) == 0 {
			report.Unembedded = append(report.Unembedded, rec.ID)
			continue
		}
		embedding, ok := indexed[rec.ID]
		switch {
		case !ok:
			report.Missing = append(report.Missing, rec.ID)
		case !slices.Equal(embedding, rec.Embedding):
			report.Stale = append(report.Stale, rec.ID)
		}
	}
	for id := range indexed {
		if !stored[id] {
			report.Orphaned = append(report.Orphaned, id)
		}
	}

	sortIDs(report.Missing)
	sortIDs(report.Stale)
	sortIDs(report.Orphaned)
	sortIDs(report.Unembedded)
	return report, nil
}

func (m *IndexMaintainer) failed() {
	if m.metrics != nil {
		m.metrics.IndexRebuildFailed()
	}
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
