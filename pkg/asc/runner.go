package asc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds one external simulation run.
const DefaultTimeout = 600 * time.Second

// Runner invokes an external SPICE simulator in batch mode on a saved
// schematic and collects its output files.
type Runner struct {
	// Command is the simulator executable.
	Command string
	// Switches are extra command-line switches placed before the
	// schematic path.
	Switches []string
	// OutputDir receives the .raw and .log files; empty leaves them next
	// to the schematic.
	OutputDir string
	// Timeout bounds the run; zero means DefaultTimeout.
	Timeout time.Duration
}

// Run simulates the schematic and returns the paths of the raw waveform
// and log files.
func (r *Runner) Run(ctx context.Context, ascPath string) (rawPath, logPath string, err error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string{}, r.Switches...), "-b", ascPath)
	slog.Info("starting simulation", "command", r.Command, "args", strings.Join(args, " "))

	start := time.Now()
	cmd := exec.CommandContext(ctx, r.Command, args...)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		slog.Debug("simulator output", "output", string(out))
	}
	if ctx.Err() == context.DeadlineExceeded {
		return "", "", fmt.Errorf("simulation timed out after %s", timeout)
	}
	if err != nil {
		return "", "", fmt.Errorf("simulation failed: %w", err)
	}
	slog.Info("simulation finished", "elapsed", time.Since(start))

	base := strings.TrimSuffix(ascPath, filepath.Ext(ascPath))
	rawPath, logPath = base+".raw", base+".log"
	for _, p := range []string{rawPath, logPath} {
		if _, err := os.Stat(p); err != nil {
			return "", "", fmt.Errorf("simulation produced no %s file: %w", filepath.Ext(p), err)
		}
	}

	if r.OutputDir != "" {
		if err := os.MkdirAll(r.OutputDir, 0o755); err != nil {
			return "", "", fmt.Errorf("create output dir: %w", err)
		}
		for i, p := range []string{rawPath, logPath} {
			dst := filepath.Join(r.OutputDir, filepath.Base(p))
			if err := os.Rename(p, dst); err != nil {
				return "", "", fmt.Errorf("move %s: %w", p, err)
			}
			if i == 0 {
				rawPath = dst
			} else {
				logPath = dst
			}
		}
	}
	slog.Info("simulation artifacts", "raw", rawPath, "log", logPath)
	return rawPath, logPath, nil
}
