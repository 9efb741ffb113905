// Package logger provides verbose logging for the related-posts service.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to trace the recommendation and ingest pipelines.
// Errors are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[INFO] "+format+"\n", args...)
	}
}

// Warn prints a warning message if verbose mode is enabled.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[WARN] "+format+"\n", args...)
	}
}

// Error prints an error message regardless of verbose mode.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, "[ERROR] "+format+"\n", args...)
}

// Leveled forwards printf-style leveled calls from embedded libraries
// (such as the badger cache) to this package. Trailing newlines are trimmed.
type Leveled struct {
	// Prefix is prepended to every message, e.g. "badger: ".
	Prefix string
}

// Errorf logs at error level.
func (l Leveled) Errorf(format string, args ...any) {
	Error("%s", l.format(format, args))
}

// Warningf logs at warn level.
func (l Leveled) Warningf(format string, args ...any) {
	Warn("%s", l.format(format, args))
}

// Infof logs at debug level; library chatter is not user-facing info.
func (l Leveled) Infof(format string, args ...any) {
	Debug("%s", l.format(format, args))
}

// Debugf logs at debug level.
func (l Leveled) Debugf(format string, args ...any) {
	Debug("%s", l.format(format, args))
}

func (l Leveled) format(format string, args []any) string {
	return l.Prefix + strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
