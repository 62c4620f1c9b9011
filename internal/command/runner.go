package command

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/oshokin/pkgsmith/internal/logger"
)

// Runner executes external packaging tools. Backends depend on this
// interface so tests can assert rendered invocations without running
// platform tools.
type Runner interface {
	// Run executes the command, blocking until it exits, and returns the
	// combined output. A non-zero exit status yields *ExternalToolError.
	Run(ctx context.Context, cmd *Command) (string, error)
}

// ExternalToolError reports a native packaging tool that exited non-zero.
// Captured output is attached so the failure is diagnosable from the error
// alone.
type ExternalToolError struct {
	// Program is the tool that failed.
	Program string
	// ExitCode is the tool's exit status.
	ExitCode int
	// Output is the combined stdout and stderr captured from the tool.
	Output string
}

// Error implements the error interface.
func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("%s exited with status %d: %s", e.Program, e.ExitCode, e.Output)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

// NewExecRunner returns a runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the command and captures combined output.
// There is no implicit retry and no timeout beyond what the caller's
// context imposes; a hanging tool blocks until it exits or the context
// is canceled.
func (r *ExecRunner) Run(ctx context.Context, cmd *Command) (string, error) {
	logger.InfoKV(ctx, "Running external tool", "command", cmd.Render())

	//nolint:gosec // Program and arguments are assembled by the backends, not user shell input.
	output, err := exec.CommandContext(ctx, cmd.Program, cmd.Argv()...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExternalToolError{
				Program:  cmd.Program,
				ExitCode: exitErr.ExitCode(),
				Output:   string(output),
			}
		}

		return "", fmt.Errorf("run %s: %w", cmd.Program, err)
	}

	return string(output), nil
}
