package driven

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// PageFetcher retrieves the title and description of a remote post.
type PageFetcher interface {
	// Fetch downloads the post addressed by key and extracts its title and
	// description. Missing elements yield empty strings, not errors.
	// The title is returned as written in the page, still entity-escaped.
	Fetch(ctx context.Context, key string) (*domain.WebPage, error)
}
