package mcp

import (
	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Recommend finds related posts.
	Recommend driving.RecommendationService

	// Ingest stores posts and lists known keys. Optional: without it the
	// ingest tool and the posts resource are read-only or empty.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Recommend == nil {
		return ErrMissingRecommendationService
	}
	return nil
}
