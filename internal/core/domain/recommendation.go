package domain

// Recommendation limits.
const (
	// DefaultRecommendationLimit is the number of related posts returned.
	DefaultRecommendationLimit = 5

	// NeighbourQuerySize is how many neighbours are requested from the index.
	// One more than the limit, because the closest hit is the query post itself.
	NeighbourQuerySize = DefaultRecommendationLimit + 1
)

// Recommendation is a related post returned to callers.
type Recommendation struct {
	// Key is the related post's content key.
	Key string `json:"blogPath"`

	// Title is the related post's title.
	Title string `json:"title"`
}
