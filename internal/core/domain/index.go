package domain

// IndexReport compares the vector index against the record store.
type IndexReport struct {
	// Records is the number of records in the record store.
	Records int

	// Entries is the number of entries in the vector index.
	Entries int

	// Missing lists record IDs that have no index entry.
	Missing []int64

	// Orphaned lists index entry IDs with no matching record.
	Orphaned []int64

	// Stale lists IDs whose indexed embedding differs from the stored one.
	Stale []int64

	// Unembedded lists record IDs stored without an embedding. They are
	// never indexed and do not make the index inconsistent.
	Unembedded []int64
}

// Consistent reports whether the index is an exact projection of the store.
func (r IndexReport) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0 && len(r.Stale) == 0
}
