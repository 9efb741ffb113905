package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// recordStore implements driven.RecordStore.
type recordStore struct {
	db *sqlx.DB
}

var _ driven.RecordStore = (*recordStore)(nil)

// postRow is the scan target for the posts table.
type postRow struct {
	ID          int64          `db:"id"`
	Key         string         `db:"key"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Embedding   sql.NullString `db:"embedding"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r postRow) toDomain() (domain.ContentRecord, error) {
	rec := domain.ContentRecord{
		ID:          r.ID,
		Key:         r.Key,
		Title:       r.Title,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Embedding.Valid {
		v, err := parseVector(r.Embedding.String)
		if err != nil {
			return rec, err
		}
		rec.Embedding = v
	}
	return rec, nil
}

const selectPosts = `SELECT id, key, title, description, embedding::text AS embedding, created_at, updated_at FROM posts`

// Upsert inserts a post or replaces the content of an existing key.
func (s *recordStore) Upsert(ctx context.Context, record *domain.ContentRecord) error {
	if record == nil || record.Key == "" {
		return domain.ErrInvalidInput
	}

	var embedding sql.NullString
	if len(record.Embedding) > 0 {
		embedding = sql.NullString{String: formatVector(record.Embedding), Valid: true}
	}

	var row struct {
		ID        int64     `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		INSERT INTO posts (key, title, description, embedding)
		VALUES ($1, $2, $3, $4::vector)
		ON CONFLICT (key) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			embedding = EXCLUDED.embedding,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, record.Key, record.Title, record.Description, embedding)
	if err != nil {
		return fmt.Errorf("saving post: %w", err)
	}

	record.ID = row.ID
	record.CreatedAt = row.CreatedAt
	record.UpdatedAt = row.UpdatedAt
	return nil
}

// Get retrieves a post by key.
func (s *recordStore) Get(ctx context.Context, key string) (*domain.ContentRecord, error) {
	var row postRow
	err := s.db.GetContext(ctx, &row, selectPosts+` WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting post: %w", err)
	}
	rec, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetDescription returns the description stored for key.
func (s *recordStore) GetDescription(ctx context.Context, key string) (string, error) {
	var description string
	err := s.db.GetContext(ctx, &description, `SELECT description FROM posts WHERE key = $1`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting description: %w", err)
	}
	return description, nil
}

// Resolve maps ids to refs with a single ANY($1) query.
func (s *recordStore) Resolve(ctx context.Context, ids []int64) ([]domain.RecordRef, error) {
	if len(ids) == 0 {
		return []domain.RecordRef{}, nil
	}

	var rows []struct {
		ID    int64  `db:"id"`
		Key   string `db:"key"`
		Title string `db:"title"`
	}
	err := s.db.SelectContext(ctx, &rows, `SELECT id, key, title FROM posts WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("resolving posts: %w", err)
	}

	refs := make([]domain.RecordRef, len(rows))
	for i, r := range rows {
		refs[i] = domain.RecordRef{ID: r.ID, Key: r.Key, Title: r.Title}
	}
	return refs, nil
}

// All returns every post ordered by id.
func (s *recordStore) All(ctx context.Context) ([]domain.ContentRecord, error) {
	var rows []postRow
	if err := s.db.SelectContext(ctx, &rows, selectPosts+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}

	records := make([]domain.ContentRecord, 0, len(rows))
	for _, r := range rows {
		rec, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", r.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ListKeys returns every key ordered by id.
func (s *recordStore) ListKeys(ctx context.Context) ([]string, error) {
	keys := []string{}
	if err := s.db.SelectContext(ctx, &keys, `SELECT key FROM posts ORDER BY id`); err != nil {
		return nil, fmt.Errorf("querying keys: %w", err)
	}
	return keys, nil
}
