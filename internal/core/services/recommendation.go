package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// Ensure RecommendationService implements the interface.
var _ driving.RecommendationService = (*RecommendationService)(nil)

// RecommendationService computes related posts with a read-through cache.
type RecommendationService struct {
	records   driven.RecordStore
	vectors   driven.VectorIndex
	cache     driven.RecommendationCache
	embedding driven.EmbeddingService
	metrics   driven.MetricsRecorder
	now       func() time.Time
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	records driven.RecordStore,
	vectors driven.VectorIndex,
	cache driven.RecommendationCache,
	embedding driven.EmbeddingService,
) *RecommendationService {
	return &RecommendationService{
		records:   records,
		vectors:   vectors,
		cache:     cache,
		embedding: embedding,
		now:       time.Now,
	}
}

// SetMetrics sets the recorder for cache and latency events.
func (s *RecommendationService) SetMetrics(m driven.MetricsRecorder) {
	s.metrics = m
}

// SetClock replaces the time source used for freshness and cache stamps.
func (s *RecommendationService) SetClock(now func() time.Time) {
	s.now = now
}

// Recommend returns related posts for key, serving from cache while fresh.
func (s *RecommendationService) Recommend(ctx context.Context, key string) ([]domain.Recommendation, error) {
	logger.Section("Recommendation")
	logger.Debug("Key: %q", key)

	started := s.now()

	cached, err := s.cache.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	switch {
	case cached == nil:
		logger.Debug("Cache miss")
		s.record(func(m driven.MetricsRecorder) { m.CacheMiss() })
	case cached.IsFresh(started):
		logger.Debug("Cache hit, age %s", started.Sub(cached.Timestamp))
		s.record(func(m driven.MetricsRecorder) { m.CacheHit() })
		return nonNil(cached.Payload), nil
	default:
		logger.Debug("Cache entry stale, age %s", started.Sub(cached.Timestamp))
		s.record(func(m driven.MetricsRecorder) { m.CacheStale() })
	}

	results, err := s.compute(ctx, key)
	if err != nil {
		return nil, err
	}

	entry := domain.CacheEntry{Timestamp: s.now(), Payload: results}
	if err := s.cache.Write(ctx, key, entry); err != nil {
		return nil, fmt.Errorf("write cache: %w", err)
	}

	logger.Info("Computed %d recommendations for %q", len(results), key)
	s.record(func(m driven.MetricsRecorder) { m.RecommendationServed(s.now().Sub(started)) })

	return results, nil
}

// compute runs the uncached pipeline: description, embedding, neighbours, resolve.
func (s *RecommendationService) compute(ctx context.Context, key string) ([]domain.Recommendation, error) {
	description, err := s.records.GetDescription(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get description for %q: %w", key, err)
	}

	embedding, err := s.embedding.Embed(ctx, description)
	if err != nil {
		return nil, fmt.Errorf("embed description: %w", err)
	}

	hits, err := s.vectors.NearestNeighbors(ctx, embedding, domain.NeighbourQuerySize)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbours: %w", err)
	}
	logger.Debug("Neighbours: %d", len(hits))

	// The closest hit is taken to be the post itself and always dropped,
	// even when fewer neighbours than requested come back.
	if len(hits) <= 1 {
		return []domain.Recommendation{}, nil
	}
	hits = hits[1:]
	if len(hits) > domain.DefaultRecommendationLimit {
		hits = hits[:domain.DefaultRecommendationLimit]
	}

	ids := make([]int64, len(hits))
	for i, hit := range hits {
		ids[i] = hit.ID
	}

	refs, err := s.records.Resolve(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve neighbours: %w", err)
	}

	return rankByNeighbour(ids, refs), nil
}

func (s *RecommendationService) record(fn func(driven.MetricsRecorder)) {
	if s.metrics != nil {
		fn(s.metrics)
	}
}

// rankByNeighbour orders refs to follow ids. IDs without a ref are skipped.
func rankByNeighbour(ids []int64, refs []domain.RecordRef) []domain.Recommendation {
	byID := make(map[int64]domain.RecordRef, len(refs))
	for _, ref := range refs {
		byID[ref.ID] = ref
	}

	results := make([]domain.Recommendation, 0, len(ids))
	for _, id := range ids {
		ref, ok := byID[id]
		if !ok {
			continue
		}
		results = append(results, domain.Recommendation{Key: ref.Key, Title: ref.Title})
	}
	return results
}

func nonNil(recs []domain.Recommendation) []domain.Recommendation {
	if recs == nil {
		return []domain.Recommendation{}
	}
	return recs
}
