package mcp

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// mockRecommendationService is a mock implementation of driving.RecommendationService.
type mockRecommendationService struct {
	recs    []domain.Recommendation
	err     error
	lastKey string
}

func (m *mockRecommendationService) Recommend(_ context.Context, key string) ([]domain.Recommendation, error) {
	m.lastKey = key
	return m.recs, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	record *domain.ContentRecord
	keys   []string
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string) (*domain.ContentRecord, error) {
	return m.record, m.err
}

func (m *mockIngestService) IngestMany(_ context.Context, keys []string) map[string]error {
	errs := make(map[string]error)
	if m.err != nil {
		for _, k := range keys {
			errs[k] = m.err
		}
	}
	return errs
}

func (m *mockIngestService) ListKeys(_ context.Context) ([]string, error) {
	return m.keys, m.err
}
