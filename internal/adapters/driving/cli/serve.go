package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/related-posts/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/related-posts/internal/logger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API:

  POST /embeddings       ingest a post, body {"blogPath": "..."}
  POST /recommendations  related posts, body {"blogPath": "..."}
  GET  /list-table       keys of every stored post
  GET  /index/status     vector index consistency report
  GET  /healthz          embedding service check (503 when unreachable)
  GET  /metrics          Prometheus metrics

When refresh.interval is set, every stored post is re-ingested on that
interval while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "HTTP port (default from server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireServices(); err != nil {
		return err
	}

	server, err := httpapi.NewServer(&httpapi.Services{
		Recommend: recommendationService,
		Ingest:    ingestService,
		Index:     indexService,
		Metrics:   metricsHandler,
		Check:     checkDependencies,
	})
	if err != nil {
		return err
	}

	if checkDependencies != nil {
		if err := checkDependencies(cmd.Context()); err != nil {
			cmd.PrintErrf("Warning: %v\n", err)
		}
	}

	port := servePort
	if port == 0 {
		port = resolved.Server.Port
	}
	if port <= 0 {
		return errors.New("no port configured")
	}
	addr := fmt.Sprintf(":%d", port)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx, addr)
	})
	if refresher != nil {
		g.Go(func() error {
			// Cancellation is the normal way to stop serving.
			if err := refresher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	cmd.Printf("Listening on http://localhost%s\n", addr)
	logger.Debug("serve: refresh interval %s", resolved.Refresh.Interval)

	return g.Wait()
}
