package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyStoreDriver    = "store.driver"
	keyStoreDataDir   = "store.data_dir"
	keyStoreDSN       = "store.dsn"
	keyCacheDriver    = "cache.driver"
	keyCacheRedisAddr = "cache.redis_addr"
	keyCacheRedisPass = "cache.redis_password"
	keyCacheRedisDB   = "cache.redis_db"
	keyCacheBadgerDir = "cache.badger_dir"
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedAPIKeyEnv = "embedding.api_key_env"
	keyEmbedDims      = "embedding.dimensions"
	keyFetchBaseURL   = "fetch.base_url"
	keyFetchRate      = "fetch.rate_per_second"
	keyFetchTimeout   = "fetch.timeout"
	keyServerPort     = "server.port"
	keyRefreshEvery   = "refresh.interval"
)

// defaultAPIKeyEnv is read when embedding.api_key_env is unset.
//
//nolint:gosec // G101: environment variable name, not a credential.
const defaultAPIKeyEnv = "OPENAI_API_KEY"

// envOverrides maps environment variables to the config keys they replace.
var envOverrides = []struct {
	env string
	key string
}{
	{"RELATED_STORE_DRIVER", keyStoreDriver},
	{"RELATED_DATA_DIR", keyStoreDataDir},
	{"RELATED_STORE_DSN", keyStoreDSN},
	{"RELATED_CACHE_DRIVER", keyCacheDriver},
	{"RELATED_REDIS_ADDR", keyCacheRedisAddr},
	{"RELATED_REDIS_PASSWORD", keyCacheRedisPass},
	{"RELATED_BADGER_DIR", keyCacheBadgerDir},
	{"RELATED_EMBEDDING_PROVIDER", keyEmbedProvider},
	{"RELATED_EMBEDDING_MODEL", keyEmbedModel},
	{"RELATED_EMBEDDING_BASE_URL", keyEmbedBaseURL},
	{"RELATED_FETCH_BASE_URL", keyFetchBaseURL},
	{"RELATED_PORT", keyServerPort},
	{"RELATED_REFRESH_INTERVAL", keyRefreshEvery},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// SetEnv replaces the environment lookup.
func (s *SettingsService) SetEnv(getenv func(string) string) {
	s.getenv = getenv
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (domain.Settings, error) {
	d := domain.DefaultSettings()

	settings := domain.Settings{
		Store: domain.StoreSettings{
			Driver:  domain.StoreDriver(s.getString(keyStoreDriver, d.Store.Driver.String())),
			DataDir: s.getString(keyStoreDataDir, d.Store.DataDir),
			DSN:     s.getString(keyStoreDSN, d.Store.DSN),
		},
		Cache: domain.CacheSettings{
			Driver:        domain.CacheDriver(s.getString(keyCacheDriver, d.Cache.Driver.String())),
			RedisAddr:     s.getString(keyCacheRedisAddr, d.Cache.RedisAddr),
			RedisPassword: s.getString(keyCacheRedisPass, ""),
			RedisDB:       s.getInt(keyCacheRedisDB, d.Cache.RedisDB),
			BadgerDir:     s.getString(keyCacheBadgerDir, d.Cache.BadgerDir),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   domain.AIProvider(s.getString(keyEmbedProvider, d.Embedding.Provider.String())),
			Model:      s.getString(keyEmbedModel, d.Embedding.Model),
			BaseURL:    s.getString(keyEmbedBaseURL, ""),
			APIKey:     s.apiKey(),
			Dimensions: s.getInt(keyEmbedDims, 0),
		},
		Fetch: domain.FetchSettings{
			BaseURL:       s.getString(keyFetchBaseURL, d.Fetch.BaseURL),
			RatePerSecond: s.getFloat(keyFetchRate, d.Fetch.RatePerSecond),
			Timeout:       s.getDuration(keyFetchTimeout, d.Fetch.Timeout),
		},
		Server: domain.ServerSettings{
			Port: s.getInt(keyServerPort, d.Server.Port),
		},
		Refresh: domain.RefreshSettings{
			Interval: s.getDuration(keyRefreshEvery, d.Refresh.Interval),
		},
	}

	if err := settings.Validate(); err != nil {
		return settings, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Save persists application settings. The API key is never written;
// it is read from the environment variable named by embedding.api_key_env.
func (s *SettingsService) Save(settings domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyStoreDriver, settings.Store.Driver.String()},
		{keyStoreDataDir, settings.Store.DataDir},
		{keyStoreDSN, settings.Store.DSN},
		{keyCacheDriver, settings.Cache.Driver.String()},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keyCacheRedisDB, settings.Cache.RedisDB},
		{keyCacheBadgerDir, settings.Cache.BadgerDir},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyFetchBaseURL, settings.Fetch.BaseURL},
		{keyFetchRate, settings.Fetch.RatePerSecond},
		{keyFetchTimeout, settings.Fetch.Timeout.String()},
		{keyServerPort, settings.Server.Port},
		{keyRefreshEvery, settings.Refresh.Interval.String()},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Set stores a single key. Numeric and duration keys are parsed before saving.
func (s *SettingsService) Set(key, value string) error {
	var stored any = value

	switch key {
	case keyServerPort, keyCacheRedisDB, keyEmbedDims:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", key, domain.ErrInvalidInput)
		}
		stored = n
	case keyFetchRate:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, domain.ErrInvalidInput)
		}
		stored = f
	case keyFetchTimeout, keyRefreshEvery:
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a duration: %w", key, domain.ErrInvalidInput)
		}
	case keyStoreDriver:
		if !domain.StoreDriver(value).IsValid() {
			return fmt.Errorf("store driver %q: %w", value, domain.ErrUnsupportedType)
		}
	case keyCacheDriver:
		if !domain.CacheDriver(value).IsValid() {
			return fmt.Errorf("cache driver %q: %w", value, domain.ErrUnsupportedType)
		}
	case keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("embedding provider %q: %w", value, domain.ErrUnsupportedType)
		}
	}

	return s.configStore.Set(key, stored)
}

// apiKey resolves the embedding API key from config or the named environment variable.
func (s *SettingsService) apiKey() string {
	if key := s.configStore.GetString(keyEmbedAPIKey); key != "" {
		return key
	}
	envName := s.configStore.GetString(keyEmbedAPIKeyEnv)
	if envName == "" {
		envName = defaultAPIKeyEnv
	}
	return s.getenv(envName)
}

// envValue returns the non-empty environment override for key.
func (s *SettingsService) envValue(key string) (string, bool) {
	for _, o := range envOverrides {
		if o.key != key {
			continue
		}
		if v := s.getenv(o.env); v != "" {
			return v, true
		}
	}
	return "", false
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.envValue(key); ok {
		return v
	}
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.envValue(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetInt(key)
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, ok := s.configStore.Get(key); ok {
		return s.configStore.GetFloat(key)
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if v, ok := s.envValue(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	if d := s.configStore.GetDuration(key); d != 0 {
		return d
	}
	return defaultVal
}
