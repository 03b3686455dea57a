// Package cli carries the logging setup and exit helpers shared by the
// command-line tools.
package cli

import (
	"log/slog"
	"os"
)

// SetupLogging installs a text slog handler on stderr. Verbose enables
// debug records.
func SetupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}

// Fatal logs an error record and exits with status 1.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	os.Exit(1)
}
