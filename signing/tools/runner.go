// Package tools adapts the external signing executables to the Signer port.
package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/signpack/signpack/signing/entities"
	"github.com/signpack/signpack/signing/ports"
)

// ExecRunner invokes tools as blocking subprocesses with combined
// stdout/stderr capture. The calling goroutine blocks until the tool exits.
type ExecRunner struct{}

// NewExecRunner creates a subprocess-backed tool runner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes tool with args and captures its output. A non-zero exit is
// reported through the result, not the error return.
func (r *ExecRunner) Run(ctx context.Context, tool string, args ...string) (ports.ToolResult, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	out, err := cmd.CombinedOutput()
	result := ports.ToolResult{Output: string(out)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("run %s: %w", tool, err)
	}
	return result, nil
}

// checkResult applies the shared judgment rule for tool invocations: a
// non-zero exit is a SigningError, while a zero exit whose output lacks the
// expected success marker is a warning only, since the tool itself claims
// success. An empty marker skips the output check.
func checkResult(logger *slog.Logger, tool, op, artifact, marker string, result ports.ToolResult) error {
	if !result.Succeeded() {
		return &entities.SigningError{
			Tool:     tool,
			Op:       op,
			Artifact: artifact,
			ExitCode: result.ExitCode,
			Output:   result.Output,
		}
	}

	if marker != "" && !strings.Contains(result.Output, marker) {
		logger.Warn("tool output missing expected marker",
			"tool", tool, "op", op, "artifact", artifact,
			"output", strings.TrimSpace(result.Output))
	}
	return nil
}
