package driving

import (
	"context"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// RecommendationService returns related posts for an ingested post.
type RecommendationService interface {
	// Recommend returns up to domain.DefaultRecommendationLimit related posts
	// for key, most similar first. The result is never nil.
	// Returns domain.ErrNotFound if key was never ingested.
	Recommend(ctx context.Context, key string) ([]domain.Recommendation, error)
}
