// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants look up related posts and ingest new ones.
package mcp

import "errors"

// ErrMissingRecommendationService is returned when the recommendation service is not provided.
var ErrMissingRecommendationService = errors.New("mcp: recommendation service is required")
