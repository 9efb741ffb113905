package domain

import "time"

const unknownDescription = "Unknown"

// StoreDriver selects the record and vector store backend.
type StoreDriver string

// Available store drivers.
const (
	// StoreDriverSQLite is the embedded SQLite database (default).
	StoreDriverSQLite StoreDriver = "sqlite"

	// StoreDriverPostgres is PostgreSQL with the pgvector extension.
	StoreDriverPostgres StoreDriver = "postgres"

	// StoreDriverMemory keeps everything in process memory.
	StoreDriverMemory StoreDriver = "memory"
)

// IsValid returns true if the store driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// CacheDriver selects the recommendation cache backend.
type CacheDriver string

// Available cache drivers.
const (
	// CacheDriverSQLite stores cache entries in a key-value table of the SQLite store.
	CacheDriverSQLite CacheDriver = "sqlite"

	// CacheDriverRedis stores cache entries in Redis.
	CacheDriverRedis CacheDriver = "redis"

	// CacheDriverBadger stores cache entries in an embedded BadgerDB.
	CacheDriverBadger CacheDriver = "badger"

	// CacheDriverMemory keeps cache entries in process memory.
	CacheDriverMemory CacheDriver = "memory"
)

// IsValid returns true if the cache driver is recognised.
func (d CacheDriver) IsValid() bool {
	switch d {
	case CacheDriverSQLite, CacheDriverRedis, CacheDriverBadger, CacheDriverMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d CacheDriver) String() string {
	return string(d)
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StoreSettings configures the record and vector store.
type StoreSettings struct {
	Driver StoreDriver

	// DataDir is the SQLite data directory. Empty means ~/.related/data.
	DataDir string

	// DSN is the PostgreSQL connection string.
	DSN string
}

// CacheSettings configures the recommendation cache.
type CacheSettings struct {
	Driver CacheDriver

	// RedisAddr is the Redis host:port.
	RedisAddr string

	// RedisPassword is optional.
	RedisPassword string

	// RedisDB selects the Redis logical database.
	RedisDB int

	// BadgerDir is the BadgerDB directory. Empty means <data dir>/cache.
	BadgerDir string
}

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Dimensions overrides the model's default vector size when non-zero.
	Dimensions int
}

// FetchSettings configures page retrieval during ingestion.
type FetchSettings struct {
	// BaseURL is prepended to every content key.
	BaseURL string

	// RatePerSecond throttles outbound page requests. Zero disables throttling.
	RatePerSecond float64

	// Timeout bounds a single page request.
	Timeout time.Duration
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Port int
}

// RefreshSettings configures periodic re-ingestion of known posts.
type RefreshSettings struct {
	// Interval between refresh runs. Zero disables refreshing.
	Interval time.Duration
}

// Settings is the resolved application configuration.
type Settings struct {
	Store     StoreSettings
	Cache     CacheSettings
	Embedding EmbeddingSettings
	Fetch     FetchSettings
	Server    ServerSettings
	Refresh   RefreshSettings
}

// Default configuration values.
const (
	DefaultFetchBaseURL   = "https://www.fermyon.com/blog/"
	DefaultFetchTimeout   = 30 * time.Second
	DefaultFetchRate      = 2.0
	DefaultServerPort     = 3000
	DefaultRedisAddr      = "localhost:6379"
	DefaultEmbeddingModel = "all-minilm"
)

// DefaultSettings returns settings for a local, zero-dependency setup.
func DefaultSettings() Settings {
	return Settings{
		Store: StoreSettings{
			Driver: StoreDriverSQLite,
		},
		Cache: CacheSettings{
			Driver:    CacheDriverSQLite,
			RedisAddr: DefaultRedisAddr,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
		},
		Fetch: FetchSettings{
			BaseURL:       DefaultFetchBaseURL,
			RatePerSecond: DefaultFetchRate,
			Timeout:       DefaultFetchTimeout,
		},
		Server: ServerSettings{
			Port: DefaultServerPort,
		},
	}
}

// Validate checks that the settings can be used to build the application.
func (s Settings) Validate() error {
	if !s.Store.Driver.IsValid() {
		return ErrUnsupportedType
	}
	if !s.Cache.Driver.IsValid() {
		return ErrUnsupportedType
	}
	if !s.Embedding.Provider.IsValid() {
		return ErrUnsupportedType
	}
	if s.Store.Driver == StoreDriverPostgres && s.Store.DSN == "" {
		return ErrInvalidInput
	}
	if s.Cache.Driver == CacheDriverSQLite && s.Store.Driver != StoreDriverSQLite {
		return ErrInvalidInput
	}
	if s.Embedding.Provider.RequiresAPIKey() && s.Embedding.APIKey == "" {
		return ErrInvalidInput
	}
	return nil
}
