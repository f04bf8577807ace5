// Package runner provides the command execution contract used for every
// host mutation. Commands are argv-style, never shell-evaluated, so the
// retry wrapper operates on typed operations rather than strings.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes host commands. Implementations must be safe to call
// sequentially; the provisioner is single-threaded by design.
type Runner interface {
	// Run executes the command and returns an error on non-zero exit.
	Run(ctx context.Context, name string, args ...string) error

	// Output executes the command and returns its combined stdout.
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands on the host via os/exec.
type ExecRunner struct{}

// New creates a host command runner.
func New() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	slog.Debug("executing command", "cmd", name, "args", strings.Join(args, " "))

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("command %q failed: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	slog.Debug("executing command", "cmd", name, "args", strings.Join(args, " "))

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", fmt.Errorf("command %q failed: %w", name, err)
	}
	return string(out), nil
}
