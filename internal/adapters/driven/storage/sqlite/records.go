package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

// Upsert inserts a post or replaces the content of an existing key in one statement.
func (s *recordStore) Upsert(ctx context.Context, record *domain.ContentRecord) error {
	if record == nil || record.Key == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	row := s.store.db.QueryRowContext(ctx, `
		INSERT INTO posts (key, title, description, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
		RETURNING id
	`, record.Key, record.Title, record.Description,
		float32SliceToBytes(record.Embedding), now, now)

	if err := row.Scan(&record.ID); err != nil {
		return fmt.Errorf("saving post: %w", err)
	}
	record.UpdatedAt = now
	return nil
}

// Get retrieves a post by key.
func (s *recordStore) Get(ctx context.Context, key string) (*domain.ContentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, key, title, description, embedding, created_at, updated_at
		FROM posts WHERE key = ?
	`, key)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	return rec, nil
}

// GetDescription returns the description stored for key.
func (s *recordStore) GetDescription(ctx context.Context, key string) (string, error) {
	var description string
	err := s.store.db.QueryRowContext(ctx,
		"SELECT description FROM posts WHERE key = ?", key).Scan(&description)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting description: %w", err)
	}
	return description, nil
}

// Resolve maps ids to refs in a single query. Order follows the database.
func (s *recordStore) Resolve(ctx context.Context, ids []int64) ([]domain.RecordRef, error) {
	if len(ids) == 0 {
		return []domain.RecordRef{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // G202: only placeholders are concatenated.
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, key, title FROM posts WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, fmt.Errorf("resolving posts: %w", err)
	}
	defer rows.Close()

	refs := make([]domain.RecordRef, 0, len(ids))
	for rows.Next() {
		var ref domain.RecordRef
		if err := rows.Scan(&ref.ID, &ref.Key, &ref.Title); err != nil {
			return nil, fmt.Errorf("scanning post ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating post refs: %w", err)
	}
	return refs, nil
}

// All returns every post ordered by id.
func (s *recordStore) All(ctx context.Context) ([]domain.ContentRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, key, title, description, embedding, created_at, updated_at
		FROM posts ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()

	records := []domain.ContentRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating posts: %w", err)
	}
	return records, nil
}

// ListKeys returns every key ordered by id.
func (s *recordStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT key FROM posts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keys: %w", err)
	}
	return keys, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single post row.
func scanRecord(row rowScanner) (*domain.ContentRecord, error) {
	var rec domain.ContentRecord
	var embedding []byte
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&rec.ID, &rec.Key, &rec.Title, &rec.Description,
		&embedding, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec.Embedding = bytesToFloat32Slice(embedding)
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		rec.UpdatedAt = updatedAt.Time
	}
	return &rec, nil
}
