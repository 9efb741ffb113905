// Package domain defines the core business entities for related-posts.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentRecord: An ingested blog post with its embedding
//   - VectorEntry: The derived (id, embedding) projection held by the index
//   - Recommendation: A related post returned to callers
//   - CacheEntry: A timestamped recommendation payload
//   - Settings: Resolved application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
