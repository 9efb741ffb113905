package driving

import "context"

// Refresher periodically re-ingests every known post.
type Refresher interface {
	// Start begins running refresh cycles.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Stop gracefully stops the refresh loop.
	Stop() error
}
