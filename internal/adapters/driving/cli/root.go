// Package cli provides the related-posts command line interface.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/related-posts/internal/core/domain"
	"github.com/custodia-labs/related-posts/internal/core/ports/driving"
	"github.com/custodia-labs/related-posts/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// annotationNoServices marks commands that run without bootstrapping.
const annotationNoServices = "no-services"

// Services holds everything the commands dispatch to.
type Services struct {
	Settings  driving.SettingsService
	Recommend driving.RecommendationService
	Ingest    driving.IngestService
	Index     driving.IndexService
	Refresher driving.Refresher

	// Metrics is served by the HTTP API when non-nil.
	Metrics http.Handler

	// Check verifies external dependencies are reachable.
	Check func(ctx context.Context) error

	// Resolved is the settings the services were built from.
	Resolved domain.Settings

	// Err is set when only Settings could be built. Commands that need the
	// other services report it.
	Err error

	// Close releases stores and clients.
	Close func() error
}

// Bootstrap builds the services from the config directory. An empty
// directory selects the default location.
type Bootstrap func(ctx context.Context, configDir string) (*Services, error)

var (
	verbose   bool
	configDir string

	bootstrap Bootstrap

	settingsService       driving.SettingsService
	recommendationService driving.RecommendationService
	ingestService         driving.IngestService
	indexService          driving.IndexService
	refresher             driving.Refresher
	metricsHandler        http.Handler
	checkDependencies     func(ctx context.Context) error
	resolved              domain.Settings
	servicesErr           error
	closeServices         func() error
)

var rootCmd = &cobra.Command{
	Use:   "related",
	Short: "Related-post recommendations from embeddings",
	Long: `related stores blog posts as embeddings of their descriptions and
recommends, for any stored post, the five posts whose descriptions are
closest to its own.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logs to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.related)")
}

// SetBootstrap registers the function used to build services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command and closes the services afterwards.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardown(); err == nil {
		err = closeErr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] == "true" || bootstrap == nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	svc, err := bootstrap(ctx, configDir)
	if err != nil {
		return err
	}
	setServices(svc)
	return nil
}

func setServices(svc *Services) {
	settingsService = svc.Settings
	recommendationService = svc.Recommend
	ingestService = svc.Ingest
	indexService = svc.Index
	refresher = svc.Refresher
	metricsHandler = svc.Metrics
	checkDependencies = svc.Check
	resolved = svc.Resolved
	servicesErr = svc.Err
	closeServices = svc.Close
}

func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// requireServices reports why the core services are unavailable.
func requireServices() error {
	if servicesErr != nil {
		return servicesErr
	}
	if recommendationService == nil || ingestService == nil || indexService == nil {
		return errors.New("services not configured")
	}
	return nil
}
