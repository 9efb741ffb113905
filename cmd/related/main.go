// Command related serves related-post recommendations built from embeddings.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/related-posts/internal/adapters/driving/cli"
	"github.com/custodia-labs/related-posts/internal/app"
)

func main() {
	// A .env file in the working directory is optional.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(app.Bootstrap)

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
