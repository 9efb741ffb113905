package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService fetches posts, embeds their descriptions and stores them.
type IngestService struct {
	fetcher   driven.PageFetcher
	embedding driven.EmbeddingService
	records   driven.RecordStore
	index     driving.IndexService
	metrics   driven.MetricsRecorder
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	fetcher driven.PageFetcher,
	embedding driven.EmbeddingService,
	records driven.RecordStore,
	index driving.IndexService,
) *IngestService {
	return &IngestService{
		fetcher:   fetcher,
		embedding: embedding,
		records:   records,
		index:     index,
	}
}

// SetMetrics sets the recorder for ingestion events.
func (s *IngestService) SetMetrics(m driven.MetricsRecorder) {
	s.metrics = m
}

// Ingest fetches the post at key, stores it with its embedding and rebuilds
// the vector index. A failed rebuild is logged and does not fail the ingest.
func (s *IngestService) Ingest(ctx context.Context, key string) (*domain.ContentRecord, error) {
	logger.Section("Ingest")

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("empty key: %w", domain.ErrInvalidInput)
	}
	logger.Debug("Key: %q", key)

	page, err := s.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", key, err)
	}

	embedding, err := s.embedding.Embed(ctx, page.Description)
	if err != nil {
		return nil, fmt.Errorf("embed %q: %w", key, err)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("embed %q: empty embedding: %w", key, domain.ErrEmbeddingUnavailable)
	}
	logger.Debug("Embedding: %d dimensions", len(embedding))

	record := &domain.ContentRecord{
		Key:         key,
		Title:       domain.UnescapeTitle(page.Title),
		Description: page.Description,
		Embedding:   embedding,
	}
	if err := s.records.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("store %q: %w", key, err)
	}
	logger.Info("Stored %q as record %d", key, record.ID)
	if s.metrics != nil {
		s.metrics.Ingested()
	}

	if err := s.index.RebuildFrom(ctx); err != nil {
		logger.Error("Index rebuild after ingesting %q failed: %v", key, err)
	}

	return record, nil
}

// IngestMany ingests each key in turn and returns the failures by key.
func (s *IngestService) IngestMany(ctx context.Context, keys []string) map[string]error {
	failures := make(map[string]error)
	for _, key := range keys {
		if ctx.Err() != nil {
			failures[key] = ctx.Err()
			continue
		}
		if _, err := s.Ingest(ctx, key); err != nil {
			logger.Warn("Ingest %q failed: %v", key, err)
			failures[key] = err
		}
	}
	return failures
}

// ListKeys returns the keys of every stored post.
func (s *IngestService) ListKeys(ctx context.Context) ([]string, error) {
	keys, err := s.records.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
