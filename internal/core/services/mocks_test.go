package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockRecordStore implements driven.RecordStore with call counters.
type mockRecordStore struct {
	mu      sync.Mutex
	records map[string]domain.ContentRecord
	nextID  int64

	upsertErr  error
	descErr    error
	resolveErr error
	allErr     error

	// reverseResolve returns refs in reverse id order.
	reverseResolve bool

	upsertCalls  int
	descCalls    int
	resolveCalls int
	allCalls     int
}

func newMockRecordStore() *mockRecordStore {
	return &mockRecordStore{records: make(map[string]domain.ContentRecord)}
}

func (m *mockRecordStore) Upsert(_ context.Context, record *domain.ContentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if m.upsertErr != nil {
		return m.upsertErr
	}
	if existing, ok := m.records[record.Key]; ok {
		record.ID = existing.ID
	} else {
		m.nextID++
		record.ID = m.nextID
	}
	m.records[record.Key] = *record
	return nil
}

func (m *mockRecordStore) Get(_ context.Context, key string) (*domain.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *mockRecordStore) GetDescription(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.descCalls++
	if m.descErr != nil {
		return "", m.descErr
	}
	rec, ok := m.records[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return rec.Description, nil
}

func (m *mockRecordStore) Resolve(_ context.Context, ids []int64) ([]domain.RecordRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolveCalls++
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var refs []domain.RecordRef
	for _, rec := range m.records {
		if wanted[rec.ID] {
			refs = append(refs, domain.RecordRef{ID: rec.ID, Key: rec.Key, Title: rec.Title})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].ID < refs[j].ID })
	if m.reverseResolve {
		for i, j := 0, len(refs)-1; i < j; i, j = i+1, j-1 {
			refs[i], refs[j] = refs[j], refs[i]
		}
	}
	return refs, nil
}

func (m *mockRecordStore) All(_ context.Context) ([]domain.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allCalls++
	if m.allErr != nil {
		return nil, m.allErr
	}
	out := make([]domain.ContentRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockRecordStore) ListKeys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.records))
	for key := range m.records {
		keys = append(keys, key)
	}
	return keys, nil
}

// mockVectorIndex implements driven.VectorIndex returning canned hits.
type mockVectorIndex struct {
	mu      sync.Mutex
	hits    []driven.VectorHit
	entries []domain.VectorEntry

	searchErr  error
	rebuildErr error

	searchCalls  int
	rebuildCalls int
	lastK        int
}

func (m *mockVectorIndex) Rebuild(_ context.Context, entries []domain.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rebuildCalls++
	if m.rebuildErr != nil {
		return m.rebuildErr
	}
	m.entries = entries
	return nil
}

func (m *mockVectorIndex) NearestNeighbors(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Entries(_ context.Context) ([]domain.VectorEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockCache implements driven.RecommendationCache with call counters.
type mockCache struct {
	mu      sync.Mutex
	entries map[string]domain.CacheEntry

	readErr  error
	writeErr error

	readCalls  int
	writeCalls int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]domain.CacheEntry)}
}

func (m *mockCache) Read(_ context.Context, key string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++
	if m.readErr != nil {
		return nil, m.readErr
	}
	entry, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

func (m *mockCache) Write(_ context.Context, key string, entry domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeCalls++
	if m.writeErr != nil {
		return m.writeErr
	}
	m.entries[key] = entry
	return nil
}

func (m *mockCache) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService.
// Texts found in vectors map to their vector; anything else gets fallback.
type mockEmbeddingService struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
	calls    int
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.fallback != nil {
		return m.fallback, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 3
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embedding"
}

func (m *mockEmbeddingService) Ping(_ context.Context) error {
	return m.err
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockFetcher implements driven.PageFetcher.
type mockFetcher struct {
	pages map[string]domain.WebPage
	err   error
	calls int
}

func (m *mockFetcher) Fetch(_ context.Context, key string) (*domain.WebPage, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	page, ok := m.pages[key]
	if !ok {
		return &domain.WebPage{}, nil
	}
	return &page, nil
}

// mockMetrics implements driven.MetricsRecorder.
type mockMetrics struct {
	hits, misses, stale int
	served              int
	ingested            int
	rebuilt             int
	rebuildFailed       int
}

func (m *mockMetrics) CacheHit() { m.hits++ }
func (m *mockMetrics) CacheMiss() { m.misses++ }
func (m *mockMetrics) CacheStale() { m.stale++ }
func (m *mockMetrics) RecommendationServed(_ time.Duration) { m.served++ }
func (m *mockMetrics) Ingested() { m.ingested++ }
func (m *mockMetrics) IndexRebuilt(_ int) { m.rebuilt++ }
func (m *mockMetrics) IndexRebuildFailed() { m.rebuildFailed++ }

// fixedClock returns a controllable time source.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}
