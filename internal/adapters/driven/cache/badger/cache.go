// Package badger provides an embedded BadgerDB recommendation cache.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.RecommendationCache = (*Cache)(nil)

// Options configures the BadgerDB cache.
type Options struct {
	// Dir is the directory for BadgerDB data files.
	// Required unless InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence.
	InMemory bool
}

// Cache is a RecommendationCache backed by BadgerDB.
type Cache struct {
	db *badger.DB
}

// New opens a BadgerDB cache.
func New(opts Options) (*Cache, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger cache: Dir is required for on-disk mode")
	}

	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(logger.Leveled{Prefix: "badger: "})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &Cache{db: db}, nil
}

// Read returns the entry for key, or nil if absent.
func (c *Cache) Read(_ context.Context, key string) (*domain.CacheEntry, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(val, &entry); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	return &entry, nil
}

// Write replaces the entry for key.
func (c *Cache) Write(_ context.Context, key string, entry domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
