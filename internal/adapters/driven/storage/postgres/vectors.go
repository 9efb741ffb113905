package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex on the post_vectors table.
type vectorIndex struct {
	db *sqlx.DB
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Rebuild replaces the table contents in one transaction.
func (v *vectorIndex) Rebuild(ctx context.Context, entries []domain.VectorEntry) error {
	tx, err := v.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM post_vectors`); err != nil {
		return fmt.Errorf("clearing vectors: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO post_vectors (id, embedding) VALUES ($1, $2::vector)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, formatVector(e.Embedding)); err != nil {
			return fmt.Errorf("inserting vector %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// NearestNeighbors orders rows by pgvector cosine distance.
func (v *vectorIndex) NearestNeighbors(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	var rows []struct {
		ID       int64   `db:"id"`
		Distance float64 `db:"distance"`
	}
	err := v.db.SelectContext(ctx, &rows, `
		SELECT id, embedding <=> $1::vector AS distance
		FROM post_vectors
		ORDER BY distance
		LIMIT $2
	`, formatVector(query), k)
	if err != nil {
		return nil, fmt.Errorf("nearest neighbours: %w", err)
	}

	hits := make([]driven.VectorHit, len(rows))
	for i, r := range rows {
		hits[i] = driven.VectorHit{ID: r.ID, Distance: r.Distance}
	}
	return hits, nil
}

// Entries returns the table contents ordered by id.
func (v *vectorIndex) Entries(ctx context.Context) ([]domain.VectorEntry, error) {
	var rows []struct {
		ID        int64  `db:"id"`
		Embedding string `db:"embedding"`
	}
	if err := v.db.SelectContext(ctx, &rows, `SELECT id, embedding::text AS embedding FROM post_vectors ORDER BY id`); err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}

	entries := make([]domain.VectorEntry, 0, len(rows))
	for _, r := range rows {
		embedding, err := parseVector(r.Embedding)
		if err != nil {
			return nil, fmt.Errorf("vector %d: %w", r.ID, err)
		}
		entries = append(entries, domain.VectorEntry{ID: r.ID, Embedding: embedding})
	}
	return entries, nil
}

// Close is a no-op; the owning Store closes the pool.
func (v *vectorIndex) Close() error {
	return nil
}
