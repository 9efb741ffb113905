// Package app wires adapters and services into the CLI from resolved settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/related-posts/internal/adapters/driven/ai"
	badgercache "github.com/custodia-labs/related-posts/internal/adapters/driven/cache/badger"
	rediscache "github.com/custodia-labs/related-posts/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/related-posts/internal/adapters/driven/config/file"
	"github.com/custodia-labs/related-posts/internal/adapters/driven/fetch/web"
	"github.com/custodia-labs/related-posts/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/related-posts/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/related-posts/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/related-posts/internal/adapters/driving/cli"
	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
	"github.com/custodia-labs/related-posts/internal/core/services"
	"github.com/custodia-labs/related-posts/internal/logger"
	"github.com/custodia-labs/related-posts/internal/metrics"
)

// stores holds the driven adapters selected by settings.
type stores struct {
	records driven.RecordStore
	vectors driven.VectorIndex
	cache   driven.RecommendationCache
	closers []func() error
}

func (s *stores) close() error {
	var errs []error
	// Close in reverse order of opening.
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Bootstrap loads config from configDir and builds the services. Invalid
// settings or unreachable backends are reported through Services.Err so
// that configuration commands keep working.
func Bootstrap(ctx context.Context, configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	out := &cli.Services{Settings: settingsService}

	settings, err := settingsService.Get()
	out.Resolved = settings
	if err != nil {
		out.Err = err
		return out, nil
	}

	if err := Build(ctx, settings, out); err != nil {
		out.Err = err
	}
	return out, nil
}

// Build opens the stores named by settings and fills in the core services.
func Build(ctx context.Context, settings domain.Settings, out *cli.Services) error {
	st, err := openStores(ctx, settings)
	if err != nil {
		return err
	}

	embedding, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		st.close() //nolint:errcheck
		return err
	}
	st.closers = append(st.closers, embedding.Close)

	recorder := metrics.NewRecorder()

	fetcher := web.NewFetcher(web.Config{
		BaseURL:       settings.Fetch.BaseURL,
		RatePerSecond: settings.Fetch.RatePerSecond,
		Timeout:       settings.Fetch.Timeout,
	})

	index := services.NewIndexMaintainer(st.records, st.vectors)
	index.SetMetrics(recorder)

	ingest := services.NewIngestService(fetcher, embedding, st.records, index)
	ingest.SetMetrics(recorder)

	recommend := services.NewRecommendationService(st.records, st.vectors, st.cache, embedding)
	recommend.SetMetrics(recorder)

	out.Recommend = recommend
	out.Ingest = ingest
	out.Index = index
	out.Refresher = services.NewRefresher(ingest, settings.Refresh.Interval)
	out.Metrics = recorder.Handler()
	out.Check = func(ctx context.Context) error {
		svc, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
		if err != nil {
			return err
		}
		return svc.Close()
	}
	out.Close = st.close

	logger.Debug("store=%s cache=%s embedding=%s/%s",
		settings.Store.Driver, settings.Cache.Driver, settings.Embedding.Provider, embedding.ModelName())
	return nil
}

func openStores(ctx context.Context, settings domain.Settings) (*stores, error) {
	st := &stores{}
	var sqliteStore *sqlite.Store

	switch settings.Store.Driver {
	case domain.StoreDriverSQLite:
		s, err := sqlite.NewStore(settings.Store.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		sqliteStore = s
		st.records = s.RecordStore()
		st.vectors = s.VectorIndex()
		st.closers = append(st.closers, s.Close)

	case domain.StoreDriverPostgres:
		s, err := postgres.NewStore(ctx, settings.Store.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		st.records = s.RecordStore()
		st.vectors = s.VectorIndex()
		st.closers = append(st.closers, s.Close)

	case domain.StoreDriverMemory:
		st.records = memory.NewRecordStore()
		st.vectors = memory.NewVectorIndex()

	default:
		return nil, fmt.Errorf("store driver %q: %w", settings.Store.Driver, domain.ErrUnsupportedType)
	}

	switch settings.Cache.Driver {
	case domain.CacheDriverSQLite:
		if sqliteStore == nil {
			st.close() //nolint:errcheck
			return nil, fmt.Errorf("sqlite cache requires the sqlite store: %w", domain.ErrInvalidInput)
		}
		st.cache = sqliteStore.Cache()

	case domain.CacheDriverRedis:
		c, err := rediscache.New(ctx, rediscache.Config{
			Addr:     settings.Cache.RedisAddr,
			Password: settings.Cache.RedisPassword,
			DB:       settings.Cache.RedisDB,
		})
		if err != nil {
			st.close() //nolint:errcheck
			return nil, fmt.Errorf("opening redis cache: %w", err)
		}
		st.cache = c
		st.closers = append(st.closers, c.Close)

	case domain.CacheDriverBadger:
		dir, err := badgerDir(settings)
		if err != nil {
			st.close() //nolint:errcheck
			return nil, err
		}
		c, err := badgercache.New(badgercache.Options{Dir: dir})
		if err != nil {
			st.close() //nolint:errcheck
			return nil, fmt.Errorf("opening badger cache: %w", err)
		}
		st.cache = c
		st.closers = append(st.closers, c.Close)

	case domain.CacheDriverMemory:
		st.cache = memory.NewRecommendationCache()

	default:
		st.close() //nolint:errcheck
		return nil, fmt.Errorf("cache driver %q: %w", settings.Cache.Driver, domain.ErrUnsupportedType)
	}

	return st, nil
}

// badgerDir resolves the badger directory, defaulting to <data dir>/cache.
func badgerDir(settings domain.Settings) (string, error) {
	if settings.Cache.BadgerDir != "" {
		return settings.Cache.BadgerDir, nil
	}
	dataDir := settings.Store.DataDir
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".related", "data")
	}
	return filepath.Join(dataDir, "cache"), nil
}
