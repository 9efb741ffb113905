package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown store, cache or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")

	// ErrCacheUnavailable indicates the recommendation cache is not configured.
	ErrCacheUnavailable = errors.New("recommendation cache unavailable")

	// ErrFetchFailed indicates the remote page could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrDimensionMismatch indicates an embedding does not match the index dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
