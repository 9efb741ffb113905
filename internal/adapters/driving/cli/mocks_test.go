package cli

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

type mockRecommendationService struct {
	recs []domain.Recommendation
	err  error
}

func (m *mockRecommendationService) Recommend(_ context.Context, _ string) ([]domain.Recommendation, error) {
	return m.recs, m.err
}

type mockIngestService struct {
	mu       sync.Mutex
	keys     []string
	failures map[string]error
	ingested []string
}

func (m *mockIngestService) Ingest(_ context.Context, key string) (*domain.ContentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failures[key]; ok {
		return nil, err
	}
	m.ingested = append(m.ingested, key)
	return &domain.ContentRecord{Key: key}, nil
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
	return m.keys, nil
}

func (m *mockIngestService) Ingested() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.ingested...)
}

type mockIndexService struct {
	report   domain.IndexReport
	err      error
	rebuilds int
}

func (m *mockIndexService) RebuildFrom(_ context.Context) error {
	m.rebuilds++
	return m.err
}

func (m *mockIndexService) Check(_ context.Context) (domain.IndexReport, error) {
	return m.report, m.err
}

type mockSettingsService struct {
	settings domain.Settings
	getErr   error
	values   map[string]string
}

func (m *mockSettingsService) Get() (domain.Settings, error) {
	return m.settings, m.getErr
}

func (m *mockSettingsService) Save(s domain.Settings) error {
	m.settings = s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "store.driver" && !domain.StoreDriver(value).IsValid() {
		return domain.ErrUnsupportedType
	}
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	recommend *mockRecommendationService
	ingest    *mockIngestService
	index     *mockIndexService
	settings  *mockSettingsService
}

// setupTestServices installs mock services and returns a cleanup function.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		recommend: &mockRecommendationService{},
		ingest:    &mockIngestService{failures: map[string]error{}},
		index:     &mockIndexService{},
		settings:  &mockSettingsService{settings: domain.DefaultSettings()},
	}

	prev := bootstrap
	bootstrap = func(_ context.Context, _ string) (*Services, error) {
		return &Services{
			Settings:  ts.settings,
			Recommend: ts.recommend,
			Ingest:    ts.ingest,
			Index:     ts.index,
			Resolved:  ts.settings.settings,
		}, nil
	}

	return ts, func() {
		bootstrap = prev
		setServices(&Services{})
		recommendJSON = false
		listJSON = false
		ingestFromFile = ""
		ingestWatch = false
		verbose = false
	}
}

var errBoom = errors.New("boom")

// mockRefresher blocks until cancelled, like the real refresh loop.
type mockRefresher struct {
	started chan struct{}
}

func (m *mockRefresher) Start(ctx context.Context) error {
	close(m.started)
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockRefresher) Stop() error { return nil }
