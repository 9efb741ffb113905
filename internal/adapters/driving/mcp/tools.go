package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// errIngestDisabled is returned by the ingest tool when no ingest service is wired.
var errIngestDisabled = errors.New("ingestion is not available on this server")

// PostInput is the input schema for the recommend and ingest tools.
type PostInput struct {
	BlogPath string `json:"blogPath" jsonschema:"the content key of the post, e.g. spin-v2"`
}

// RecommendOutput is the output schema for the recommend tool.
type RecommendOutput struct {
	Results []RelatedPostOutput `json:"results"`
	Count   int                 `json:"count"`
}

// RelatedPostOutput represents a single related post.
type RelatedPostOutput struct {
	BlogPath string `json:"blogPath"`
	Title    string `json:"title"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	BlogPath string `json:"blogPath"`
	Title    string `json:"title"`
	ID       int64  `json:"id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend",
		Description: "Find up to five posts related to a stored post, closest first",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest",
		Description: "Fetch a post, embed its description and store it for recommendations",
	}, s.handleIngest)
}

// handleRecommend handles the recommend tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PostInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	recs, err := s.ports.Recommend.Recommend(ctx, input.BlogPath)
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	output := RecommendOutput{
		Results: make([]RelatedPostOutput, len(recs)),
		Count:   len(recs),
	}
	for i, rec := range recs {
		output.Results[i] = RelatedPostOutput{BlogPath: rec.Key, Title: rec.Title}
	}

	return nil, output, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PostInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	if s.ports.Ingest == nil {
		return nil, IngestOutput{}, errIngestDisabled
	}

	record, err := s.ports.Ingest.Ingest(ctx, input.BlogPath)
	if err != nil {
		return nil, IngestOutput{}, err
	}

	return nil, IngestOutput{BlogPath: record.Key, Title: record.Title, ID: record.ID}, nil
}
