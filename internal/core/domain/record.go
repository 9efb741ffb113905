package domain

import "time"

// ContentRecord is an ingested piece of content with its description embedding.
// It is owned by the RecordStore, which is the source of truth.
type ContentRecord struct {
	// ID is the stable row identifier assigned by the RecordStore.
	// It is the join key between the RecordStore and the VectorIndex.
	ID int64

	// Key is the unique content key (the blog path, e.g. "spin-v2").
	Key string

	// Title is the unescaped page title.
	Title string

	// Description is the text that was embedded.
	Description string

	// Embedding is the description vector. Its length is fixed by the model.
	Embedding []float32

	// CreatedAt is when the record was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the record was last replaced.
	UpdatedAt time.Time
}

// VectorEntry is the derived projection of a ContentRecord held by the VectorIndex.
// Entries are never edited by hand; they are regenerated in bulk on rebuild.
type VectorEntry struct {
	// ID references ContentRecord.ID.
	ID int64

	// Embedding is a copy of ContentRecord.Embedding.
	Embedding []float32
}

// RecordRef is the (id, key, title) triple returned by a batch resolve.
type RecordRef struct {
	ID    int64
	Key   string
	Title string
}

// VectorEntries projects records into index entries. Records without an
// embedding have nothing to index and are skipped.
func VectorEntries(records []ContentRecord) []VectorEntry {
	entries := make([]VectorEntry, 0, len(records))
	for i := range records {
		if len(records[i].Embedding) == 0 {
			continue
		}
		entries = append(entries, VectorEntry{
			ID:        records[i].ID,
			Embedding: records[i].Embedding,
		})
	}
	return entries
}
