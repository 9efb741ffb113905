package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for post resources.
	uriScheme = "related://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing stored posts.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "posts",
		Name:        "posts",
		Description: "Content keys of every stored post",
		MIMEType:    "application/json",
	}, s.handlePostsResource)

	// Template for the related posts of a single post.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "posts/{blogPath}/related",
		Name:        "related-posts",
		Description: "Posts related to a specific post",
		MIMEType:    "application/json",
	}, s.handleRelatedResource)
}

// handlePostsResource returns the keys of all stored posts.
func (s *Server) handlePostsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Ingest == nil {
		return jsonResult(req.Params.URI, "[]"), nil
	}

	keys, err := s.ports.Ingest.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling posts: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

// handleRelatedResource returns the recommendations for one post.
func (s *Server) handleRelatedResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract blogPath from URI: related://posts/{blogPath}/related
	key := extractPostKey(req.Params.URI)
	if key == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	recs, err := s.ports.Recommend.Recommend(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("recommending: %w", err)
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling recommendations: %w", err)
	}

	return jsonResult(req.Params.URI, string(data)), nil
}

func jsonResult(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}

// extractPostKey extracts the key from a URI like related://posts/{blogPath}/related.
func extractPostKey(uri string) string {
	const prefix = uriScheme + "posts/"
	const suffix = "/related"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
