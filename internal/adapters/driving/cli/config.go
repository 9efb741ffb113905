package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

// secretKey is prompted for without echo when set without a value.
const secretKey = "embedding.api_key"

// passwordReader reads a secret from stdin. Replaced in tests.
var passwordReader = readPassword

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
	Long: `Show and change the settings stored in ~/.related/config.toml.

Environment variables (RELATED_*) override file values. The embedding API key
is read from the variable named by embedding.api_key_env (default
OPENAI_API_KEY) unless embedding.api_key is set.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration value",
	Long: `Set a configuration value using dot notation, for example:

  related config set store.driver postgres
  related config set store.dsn postgres://localhost/related?sslmode=disable
  related config set cache.driver redis
  related config set refresh.interval 1h
  related config set embedding.api_key      (prompts without echo)`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Store]")
	cmd.Printf("  Driver: %s\n", settings.Store.Driver)
	switch settings.Store.Driver {
	case domain.StoreDriverSQLite:
		cmd.Printf("  Data dir: %s\n", orDefault(settings.Store.DataDir, "~/.related/data"))
	case domain.StoreDriverPostgres:
		cmd.Printf("  DSN: %s\n", orDefault(maskDSN(settings.Store.DSN), "(not set)"))
	}
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Driver: %s\n", settings.Cache.Driver)
	switch settings.Cache.Driver {
	case domain.CacheDriverRedis:
		cmd.Printf("  Address: %s (db %d)\n", settings.Cache.RedisAddr, settings.Cache.RedisDB)
	case domain.CacheDriverBadger:
		cmd.Printf("  Dir: %s\n", orDefault(settings.Cache.BadgerDir, "<data dir>/cache"))
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Println()

	cmd.Println("[Fetch]")
	cmd.Printf("  Base URL: %s\n", settings.Fetch.BaseURL)
	cmd.Printf("  Rate: %g req/s\n", settings.Fetch.RatePerSecond)
	cmd.Printf("  Timeout: %s\n", settings.Fetch.Timeout)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Port: %d\n", settings.Server.Port)
	if settings.Refresh.Interval > 0 {
		cmd.Printf("  Refresh: every %s\n", settings.Refresh.Interval)
	} else {
		cmd.Println("  Refresh: disabled")
	}

	if err != nil {
		st := newStyler(cmd.OutOrStdout())
		cmd.Println()
		cmd.Println(st.render(warnStyle, "Warning: "+err.Error()))
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case key == secretKey:
		cmd.Print("API key: ")
		value = passwordReader(cmd.InOrStdin())
		cmd.Println()
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if key == secretKey {
		cmd.Printf("Set %s\n", key)
	} else {
		cmd.Printf("Set %s = %s\n", key, value)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 {
		return dsn
	}
	creds := dsn[scheme+3 : at]
	user, _, hasPass := strings.Cut(creds, ":")
	if !hasPass {
		return dsn
	}
	return dsn[:scheme+3] + user + ":****" + dsn[at:]
}
