package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

func setupMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	store := NewStoreFromDB(sqlx.NewDb(db, "postgres"))
	t.Cleanup(func() {
		mock.ExpectClose()
		assert.NoError(t, store.Close())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return store, mock
}

func TestFormatAndParseVector(t *testing.T) {
	v := []float32{0.5, -1.25, 3}
	assert.Equal(t, "[0.5,-1.25,3]", formatVector(v))

	parsed, err := parseVector("[0.5,-1.25,3]")
	require.NoError(t, err)
	assert.Equal(t, v, parsed)

	parsed, err = parseVector("[]")
	require.NoError(t, err)
	assert.Nil(t, parsed)

	_, err = parseVector("[a,b]")
	assert.Error(t, err)
}

func TestNewStore_RequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_EnsureSchema(t *testing.T) {
	store, mock := setupMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE EXTENSION IF NOT EXISTS vector")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
}

func TestRecordStore_Upsert(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO posts (key, title, description, embedding)")).
		WithArgs("spin-intro", "Spin", "About Spin", "[1,0.5]").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	rec := &domain.ContentRecord{Key: "spin-intro", Title: "Spin", Description: "About Spin", Embedding: []float32{1, 0.5}}
	require.NoError(t, store.RecordStore().Upsert(context.Background(), rec))

	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, now, rec.CreatedAt)
}

func TestRecordStore_Upsert_InvalidInput(t *testing.T) {
	store, _ := setupMockStore(t)
	err := store.RecordStore().Upsert(context.Background(), &domain.ContentRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRecordStore_GetDescription(t *testing.T) {
	store, mock := setupMockStore(t)
	query := regexp.QuoteMeta("SELECT description FROM posts WHERE key = $1")

	mock.ExpectQuery(query).WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"description"}).AddRow("about a"))
	mock.ExpectQuery(query).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(query).WithArgs("broken").WillReturnError(errors.New("connection reset"))

	desc, err := store.RecordStore().GetDescription(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "about a", desc)

	_, err = store.RecordStore().GetDescription(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.RecordStore().GetDescription(context.Background(), "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStore_Get(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now()
	cols := []string{"id", "key", "title", "description", "embedding", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM posts WHERE key = $1")).WithArgs("a").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(1, "a", "A", "about a", "[1,0]", now, now))

	rec, err := store.RecordStore().Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.ID)
	assert.Equal(t, []float32{1, 0}, rec.Embedding)
}

func TestRecordStore_Resolve(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, key, title FROM posts WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "key", "title"}).
			AddRow(3, "c", "C").
			AddRow(1, "a", "A"))

	refs, err := store.RecordStore().Resolve(context.Background(), []int64{1, 3, 99})
	require.NoError(t, err)
	assert.Equal(t, []domain.RecordRef{{ID: 3, Key: "c", Title: "C"}, {ID: 1, Key: "a", Title: "A"}}, refs)

	refs, err = store.RecordStore().Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestRecordStore_All(t *testing.T) {
	store, mock := setupMockStore(t)
	now := time.Now()
	cols := []string{"id", "key", "title", "description", "embedding", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, "a", "A", "about a", "[1,0]", now, now).
			AddRow(2, "b", "B", "about b", nil, now, now))

	records, err := store.RecordStore().All(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []float32{1, 0}, records[0].Embedding)
	assert.Nil(t, records[1].Embedding)
}

func TestRecordStore_ListKeys(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key FROM posts ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("a").AddRow("b"))

	keys, err := store.RecordStore().ListKeys(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestVectorIndex_Rebuild(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM post_vectors")).WillReturnResult(sqlmock.NewResult(0, 3))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO post_vectors (id, embedding)"))
	prep.ExpectExec().WithArgs(int64(1), "[1,0]").WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(int64(2), "[0,1]").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := store.VectorIndex().Rebuild(context.Background(), []domain.VectorEntry{
		{ID: 1, Embedding: []float32{1, 0}},
		{ID: 2, Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)
}

func TestVectorIndex_Rebuild_RollsBackOnError(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM post_vectors")).WillReturnResult(sqlmock.NewResult(0, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO post_vectors (id, embedding)"))
	prep.ExpectExec().WithArgs(int64(1), "[1]").WillReturnError(errors.New("dimension mismatch"))
	mock.ExpectRollback()

	err := store.VectorIndex().Rebuild(context.Background(), []domain.VectorEntry{{ID: 1, Embedding: []float32{1}}})
	require.Error(t, err)
}

func TestVectorIndex_NearestNeighbors(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("embedding <=> $1::vector AS distance")).
		WithArgs("[1,0]", int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "distance"}).
			AddRow(1, 0.0).
			AddRow(2, 0.006).
			AddRow(3, 1.0))

	hits, err := store.VectorIndex().NearestNeighbors(context.Background(), []float32{1, 0}, 6)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, int64(1), hits[0].ID)
	assert.InDelta(t, 0.006, hits[1].Distance, 1e-9)
}

func TestVectorIndex_Entries(t *testing.T) {
	store, mock := setupMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, embedding::text AS embedding FROM post_vectors")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "embedding"}).AddRow(1, "[1,0]"))

	entries, err := store.VectorIndex().Entries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.VectorEntry{{ID: 1, Embedding: []float32{1, 0}}}, entries)
	assert.NoError(t, store.VectorIndex().Close())
}
