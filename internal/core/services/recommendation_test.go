package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/related-posts/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// setupRecommendationFixture seeds six records and hits ranked 1..6.
func setupRecommendationFixture(t *testing.T) (*mockRecordStore, *mockVectorIndex, *mockCache, *mockEmbeddingService) {
	t.Helper()
	ctx := context.Background()

	records := newMockRecordStore()
	for _, key := range []string{"self", "p2", "p3", "p4", "p5", "p6", "p7"} {
		rec := &domain.ContentRecord{Key: key, Title: "Title " + key, Description: "desc " + key}
		require.NoError(t, records.Upsert(ctx, rec))
	}

	vectors := &mockVectorIndex{hits: []driven.VectorHit{
		{ID: 1, Distance: 0},
		{ID: 2, Distance: 0.1},
		{ID: 3, Distance: 0.2},
		{ID: 4, Distance: 0.3},
		{ID: 5, Distance: 0.4},
		{ID: 6, Distance: 0.5},
		{ID: 7, Distance: 0.6},
	}}

	return records, vectors, newMockCache(), &mockEmbeddingService{}
}

func TestNewRecommendationService(t *testing.T) {
	svc := NewRecommendationService(newMockRecordStore(), &mockVectorIndex{}, newMockCache(), &mockEmbeddingService{})
	require.NotNil(t, svc)
	assert.NotNil(t, svc.now)
}

func TestRecommendationService_Recommend_DropsFirstHit(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	svc := NewRecommendationService(records, vectors, cache, embedder)

	results, err := svc.Recommend(context.Background(), "self")
	require.NoError(t, err)

	assert.Equal(t, domain.NeighbourQuerySize, vectors.lastK)
	require.Len(t, results, domain.DefaultRecommendationLimit)
	assert.Equal(t, "p2", results[0].Key)
	assert.Equal(t, "Title p2", results[0].Title)
	assert.Equal(t, "p6", results[4].Key)
	for _, r := range results {
		assert.NotEqual(t, "self", r.Key)
	}
}

func TestRecommendationService_Recommend_ReordersResolvedRefs(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	records.reverseResolve = true
	svc := NewRecommendationService(records, vectors, cache, embedder)

	results, err := svc.Recommend(context.Background(), "self")
	require.NoError(t, err)

	keys := make([]string, len(results))
	for i, r := range results {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{"p2", "p3", "p4", "p5", "p6"}, keys)
}

func TestRecommendationService_Recommend_CacheWriteThrough(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	clock := &fixedClock{t: time.UnixMilli(1_700_000_000_000)}
	svc := NewRecommendationService(records, vectors, cache, embedder)
	svc.SetClock(clock.Now)
	ctx := context.Background()

	first, err := svc.Recommend(ctx, "self")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.writeCalls)
	assert.Equal(t, clock.t, cache.entries["self"].Timestamp)

	clock.Advance(time.Minute)
	second, err := svc.Recommend(ctx, "self")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, records.descCalls)
	assert.Equal(t, 1, records.resolveCalls)
	assert.Equal(t, 1, vectors.searchCalls)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, 1, cache.writeCalls, "hit must not write")
}

func TestRecommendationService_Recommend_FreshnessBoundary(t *testing.T) {
	tests := []struct {
		name      string
		age       time.Duration
		wantFresh bool
	}{
		{"just written", 0, true},
		{"at ttl", domain.CacheTTL, true},
		{"one ms past ttl", domain.CacheTTL + time.Millisecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, vectors, cache, embedder := setupRecommendationFixture(t)
			clock := &fixedClock{t: time.UnixMilli(1_700_000_000_000)}
			cached := []domain.Recommendation{{Key: "cached", Title: "Cached"}}
			cache.entries["self"] = domain.CacheEntry{Timestamp: clock.t, Payload: cached}
			clock.Advance(tt.age)

			svc := NewRecommendationService(records, vectors, cache, embedder)
			svc.SetClock(clock.Now)

			results, err := svc.Recommend(context.Background(), "self")
			require.NoError(t, err)

			if tt.wantFresh {
				assert.Equal(t, cached, results)
				assert.Equal(t, 0, records.descCalls)
				assert.Equal(t, 0, cache.writeCalls)
			} else {
				assert.NotEqual(t, cached, results)
				assert.Equal(t, 1, records.descCalls)
				assert.Equal(t, 1, cache.writeCalls)
				assert.Equal(t, clock.t, cache.entries["self"].Timestamp)
			}
		})
	}
}

func TestRecommendationService_Recommend_FreshEmptyPayload(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	cache.entries["self"] = domain.CacheEntry{Timestamp: time.Now()}
	svc := NewRecommendationService(records, vectors, cache, embedder)

	results, err := svc.Recommend(context.Background(), "self")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 0, records.descCalls)
}

func TestRecommendationService_Recommend_NotFound(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	svc := NewRecommendationService(records, vectors, cache, embedder)

	_, err := svc.Recommend(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, embedder.calls)
	assert.Equal(t, 0, cache.writeCalls)
}

func TestRecommendationService_Recommend_SingleRecord(t *testing.T) {
	records := newMockRecordStore()
	require.NoError(t, records.Upsert(context.Background(), &domain.ContentRecord{Key: "only", Description: "d"}))
	vectors := &mockVectorIndex{hits: []driven.VectorHit{{ID: 1}}}
	cache := newMockCache()

	svc := NewRecommendationService(records, vectors, cache, &mockEmbeddingService{})

	results, err := svc.Recommend(context.Background(), "only")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 0, records.resolveCalls)
	assert.Equal(t, 1, cache.writeCalls)
}

func TestRecommendationService_Recommend_FewNeighbours(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	vectors.hits = vectors.hits[:3]
	svc := NewRecommendationService(records, vectors, cache, embedder)

	results, err := svc.Recommend(context.Background(), "self")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "p2", results[0].Key)
	assert.Equal(t, "p3", results[1].Key)
}

func TestRecommendationService_Recommend_CollaboratorFailures(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(*mockRecordStore, *mockVectorIndex, *mockCache, *mockEmbeddingService)
	}{
		{"cache read", func(_ *mockRecordStore, _ *mockVectorIndex, c *mockCache, _ *mockEmbeddingService) {
			c.readErr = errBoom
		}},
		{"description", func(r *mockRecordStore, _ *mockVectorIndex, _ *mockCache, _ *mockEmbeddingService) {
			r.descErr = errBoom
		}},
		{"embedding", func(_ *mockRecordStore, _ *mockVectorIndex, _ *mockCache, e *mockEmbeddingService) {
			e.err = errBoom
		}},
		{"neighbours", func(_ *mockRecordStore, v *mockVectorIndex, _ *mockCache, _ *mockEmbeddingService) {
			v.searchErr = errBoom
		}},
		{"resolve", func(r *mockRecordStore, _ *mockVectorIndex, _ *mockCache, _ *mockEmbeddingService) {
			r.resolveErr = errBoom
		}},
		{"cache write", func(_ *mockRecordStore, _ *mockVectorIndex, c *mockCache, _ *mockEmbeddingService) {
			c.writeErr = errBoom
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, vectors, cache, embedder := setupRecommendationFixture(t)
			tt.setup(records, vectors, cache, embedder)
			svc := NewRecommendationService(records, vectors, cache, embedder)

			results, err := svc.Recommend(context.Background(), "self")
			require.Error(t, err)
			assert.ErrorIs(t, err, errBoom)
			assert.Nil(t, results)
		})
	}
}

func TestRecommendationService_Recommend_Metrics(t *testing.T) {
	records, vectors, cache, embedder := setupRecommendationFixture(t)
	clock := &fixedClock{t: time.UnixMilli(1_700_000_000_000)}
	metrics := &mockMetrics{}
	svc := NewRecommendationService(records, vectors, cache, embedder)
	svc.SetClock(clock.Now)
	svc.SetMetrics(metrics)
	ctx := context.Background()

	_, err := svc.Recommend(ctx, "self")
	require.NoError(t, err)
	_, err = svc.Recommend(ctx, "self")
	require.NoError(t, err)
	clock.Advance(domain.CacheTTL + time.Second)
	_, err = svc.Recommend(ctx, "self")
	require.NoError(t, err)

	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.stale)
	assert.Equal(t, 2, metrics.served)
}

// TestRecommendationService_Recommend_RanksBySimilarity runs the pipeline
// over the in-memory stores with real cosine ranking.
func TestRecommendationService_Recommend_RanksBySimilarity(t *testing.T) {
	ctx := context.Background()
	records := memory.NewRecordStore()
	vectors := memory.NewVectorIndex()
	cache := memory.NewRecommendationCache()
	embedder := &mockEmbeddingService{vectors: map[string][]float32{
		"about a": {1, 0},
		"about b": {0.9, 0.1},
		"about c": {0, 1},
	}}

	fetcher := &mockFetcher{pages: map[string]domain.WebPage{
		"a": {Title: "A", Description: "about a"},
		"b": {Title: "B", Description: "about b"},
		"c": {Title: "C", Description: "about c"},
	}}
	ingest := NewIngestService(fetcher, embedder, records, NewIndexMaintainer(records, vectors))
	for _, key := range []string{"a", "b", "c"} {
		_, err := ingest.Ingest(ctx, key)
		require.NoError(t, err)
	}

	svc := NewRecommendationService(records, vectors, cache, embedder)
	results, err := svc.Recommend(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []domain.Recommendation{
		{Key: "b", Title: "B"},
		{Key: "c", Title: "C"},
	}, results)
}

func TestRankByNeighbour(t *testing.T) {
	refs := []domain.RecordRef{
		{ID: 3, Key: "c", Title: "C"},
		{ID: 1, Key: "a", Title: "A"},
	}

	got := rankByNeighbour([]int64{1, 2, 3}, refs)

	assert.Equal(t, []domain.Recommendation{
		{Key: "a", Title: "A"},
		{Key: "c", Title: "C"},
	}, got)
}
