package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// Ensure Refresher implements the interface.
var _ driving.Refresher = (*Refresher)(nil)

// Refresher re-ingests every known post on a fixed interval so titles,
// descriptions and embeddings follow upstream edits.
type Refresher struct {
	ingest   driving.IngestService
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRefresher creates a refresher. A non-positive interval disables it.
func NewRefresher(ingest driving.IngestService, interval time.Duration) *Refresher {
	return &Refresher{
		ingest:   ingest,
		interval: interval,
	}
}

// Start runs the refresh loop. This method blocks until Stop is called
// or the context is cancelled. It returns immediately when disabled.
func (r *Refresher) Start(ctx context.Context) error {
	if r.interval <= 0 {
		logger.Debug("Refresher disabled")
		return nil
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil // Already running
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			r.running = false
			r.mu.Unlock()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			if !r.begin() {
				return nil
			}
			r.runOnce(ctx)
			r.wg.Done()
		}
	}
}

// Stop gracefully shuts down the refresher and waits for a running cycle.
func (r *Refresher) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()

	return nil
}

// begin registers a cycle with the wait group. It reports false once Stop
// has been called, so no cycle starts after Stop returns.
func (r *Refresher) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return false
	}
	r.wg.Add(1)
	return true
}

// runOnce re-ingests all keys. Cycles never overlap.
func (r *Refresher) runOnce(ctx context.Context) {

	keys, err := r.ingest.ListKeys(ctx)
	if err != nil {
		logger.Warn("refresher: failed to list keys: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}

	started := time.Now()
	failures := r.ingest.IngestMany(ctx, keys)
	logger.Info("refresher: refreshed %d posts in %s, %d failed",
		len(keys)-len(failures), time.Since(started).Round(time.Millisecond), len(failures))
}
