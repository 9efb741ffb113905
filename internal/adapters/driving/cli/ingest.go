package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/related-posts/internal/logger"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 300 * time.Millisecond

var (
	ingestFromFile string
	ingestWatch    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [blogPath...]",
	Short: "Fetch, embed and store posts",
	Long: `Fetches each post, embeds its description and stores it. The vector
index is rebuilt after every post.

Keys can be given as arguments or read from a file with one key per line.
Blank lines and lines starting with # are ignored. With --watch, keys added
to the file are ingested as they appear.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFromFile, "from-file", "f", "", "read keys from a file, one per line")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and ingest keys added to --from-file")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestWatch && ingestFromFile == "" {
		return errors.New("--watch requires --from-file")
	}
	if len(args) == 0 && ingestFromFile == "" {
		return errors.New("no keys given: pass keys as arguments or use --from-file")
	}
	if err := requireServices(); err != nil {
		return err
	}

	keys := append([]string{}, args...)
	if ingestFromFile != "" {
		fileKeys, err := readKeysFile(ingestFromFile)
		if err != nil {
			return err
		}
		keys = append(keys, fileKeys...)
	}

	failed := ingestKeys(cmd, keys)

	if ingestWatch {
		return watchKeysFile(cmd, ingestFromFile, keys)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d posts failed to ingest", failed, len(keys))
	}
	return nil
}

// ingestKeys ingests keys and prints one line per key. Returns the failure count.
func ingestKeys(cmd *cobra.Command, keys []string) int {
	if len(keys) == 0 {
		return 0
	}

	st := newStyler(cmd.OutOrStdout())
	errs := ingestService.IngestMany(cmd.Context(), keys)
	for _, k := range keys {
		if err, ok := errs[k]; ok {
			cmd.Printf("%s %s: %v\n", st.render(warnStyle, "failed"), k, err)
			continue
		}
		cmd.Printf("inserted embedding for %s\n", k)
	}
	return len(errs)
}

// readKeysFile reads one key per line, skipping blanks and # comments.
func readKeysFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keys file: %w", err)
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}
	return keys, nil
}

// newKeys returns keys from next that are not in seen, in file order.
func newKeys(seen map[string]bool, next []string) []string {
	var out []string
	for _, k := range next {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

// watchKeysFile ingests keys added to path until the command context ends.
// The parent directory is watched so editors that replace the file on save
// are still observed.
func watchKeysFile(cmd *cobra.Command, path string, known []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	seen := make(map[string]bool, len(known))
	for _, k := range known {
		seen[k] = true
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Printf("Watching %s for new keys (Ctrl+C to stop)\n", path)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce = time.After(watchDebounce)
			}

		case <-debounce:
			debounce = nil
			keys, err := readKeysFile(path)
			if err != nil {
				logger.Warn("reload keys file: %v", err)
				continue
			}
			added := newKeys(seen, keys)
			logger.Debug("keys file changed, %d new keys", len(added))
			ingestKeys(cmd, added)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher: %v", err)
		}
	}
}
