// Package postgres provides a PostgreSQL implementation of the record store and
// vector index. Nearest-neighbour queries use the pgvector cosine distance
// operator (<=>), so the vector extension must be installable in the database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// schema is applied by EnsureSchema. Statements are idempotent.
const schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS posts (
	id BIGSERIAL PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	embedding vector,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS post_vectors (
	id BIGINT PRIMARY KEY,
	embedding vector NOT NULL
);
`

// Store wraps a PostgreSQL connection pool and hands out port implementations.
type Store struct {
	db *sqlx.DB
}

// NewStore connects to dsn and applies the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := NewStoreFromDB(db)
	if err := s.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreFromDB wraps an existing connection without touching the schema.
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the extension and tables if they are missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordStore returns a RecordStore backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{db: s.db}
}

// VectorIndex returns a VectorIndex backed by this store.
// Closing it does not close the store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{db: s.db}
}

// formatVector renders a pgvector literal such as [0.1,0.2].
func formatVector(v []float32) string {
	elements := make([]string, len(v))
	for i, f := range v {
		elements[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "[" + strings.Join(elements, ",") + "]"
}

// parseVector reads a pgvector text literal.
func parseVector(s string) ([]float32, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parsing vector element %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
