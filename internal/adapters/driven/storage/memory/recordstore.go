package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driven"
)

// Ensure RecordStore implements the interface.
var _ driven.RecordStore = (*RecordStore)(nil)

// RecordStore is an in-memory implementation of driven.RecordStore.
type RecordStore struct {
	mu     sync.RWMutex
	byKey  map[string]*domain.ContentRecord
	byID   map[int64]*domain.ContentRecord
	nextID int64
}

// NewRecordStore creates a new in-memory record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		byKey: make(map[string]*domain.ContentRecord),
		byID:  make(map[int64]*domain.ContentRecord),
	}
}

// Upsert inserts a record or replaces the content of an existing key.
func (s *RecordStore) Upsert(_ context.Context, record *domain.ContentRecord) error {
	if record == nil || record.Key == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	stored := *record
	stored.Embedding = slices.Clone(record.Embedding)

	if existing, ok := s.byKey[record.Key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		s.nextID++
		stored.ID = s.nextID
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	s.byKey[stored.Key] = &stored
	s.byID[stored.ID] = &stored

	record.ID = stored.ID
	record.CreatedAt = stored.CreatedAt
	record.UpdatedAt = stored.UpdatedAt
	return nil
}

// Get retrieves a record by key.
func (s *RecordStore) Get(_ context.Context, key string) (*domain.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byKey[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *rec
	out.Embedding = slices.Clone(rec.Embedding)
	return &out, nil
}

// GetDescription returns the description stored for key.
func (s *RecordStore) GetDescription(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byKey[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return rec.Description, nil
}

// Resolve maps ids to refs, skipping unknown ids.
func (s *RecordStore) Resolve(_ context.Context, ids []int64) ([]domain.RecordRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make([]domain.RecordRef, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.byID[id]; ok {
			refs = append(refs, domain.RecordRef{ID: rec.ID, Key: rec.Key, Title: rec.Title})
		}
	}
	return refs, nil
}

// All returns every record ordered by ID.
func (s *RecordStore) All(_ context.Context) ([]domain.ContentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ContentRecord, 0, len(s.byID))
	for _, rec := range s.byID {
		r := *rec
		r.Embedding = slices.Clone(rec.Embedding)
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListKeys returns every key ordered by ID.
func (s *RecordStore) ListKeys(ctx context.Context) ([]string, error) {
	records, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = rec.Key
	}
	return keys, nil
}
