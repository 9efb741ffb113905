package httpapi

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

type mockRecommendService struct {
	recs    []domain.Recommendation
	err     error
	lastKey string
}

func (m *mockRecommendService) Recommend(_ context.Context, key string) ([]domain.Recommendation, error) {
	m.lastKey = key
	return m.recs, m.err
}

type mockIngestService struct {
	keys    []string
	err     error
	listErr error
	lastKey string
}

func (m *mockIngestService) Ingest(_ context.Context, key string) (*domain.ContentRecord, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	return &domain.ContentRecord{ID: 1, Key: key}, nil
}

func (m *mockIngestService) IngestMany(ctx context.Context, keys []string) map[string]error {
	errs := make(map[string]error)
	for _, k := range keys {
		if _, err := m.Ingest(ctx, k); err != nil {
			errs[k] = err
		}
	}
	return errs
}

func (m *mockIngestService) ListKeys(_ context.Context) ([]string, error) {
	return m.keys, m.listErr
}

type mockIndexService struct {
	report domain.IndexReport
	err    error
}

func (m *mockIndexService) RebuildFrom(_ context.Context) error { return m.err }

func (m *mockIndexService) Check(_ context.Context) (domain.IndexReport, error) {
	return m.report, m.err
}
