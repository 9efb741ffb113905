package sqlite

import (
	"context"
	"fmt"

	"github.com/custodia-labs/related-posts/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex over the post_vectors table.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Rebuild replaces the table contents in one transaction.
func (v *vectorIndex) Rebuild(ctx context.Context, entries []domain.VectorEntry) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM post_vectors"); err != nil {
		return fmt.Errorf("clearing vectors: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO post_vectors (id, embedding) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("inserting vector %d: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// NearestNeighbors scans every stored vector and ranks by cosine distance.
func (v *vectorIndex) NearestNeighbors(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	entries, err := v.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return vecmath.NearestNeighbors(query, entries, k), nil
}

// Entries returns the table contents ordered by id.
func (v *vectorIndex) Entries(ctx context.Context) ([]domain.VectorEntry, error) {
	rows, err := v.store.db.QueryContext(ctx, "SELECT id, embedding FROM post_vectors ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	entries := []domain.VectorEntry{}
	for rows.Next() {
		var e domain.VectorEntry
		var blob []byte
		if err := rows.Scan(&e.ID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		e.Embedding = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return entries, nil
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}
