package tools

import (
	"context"
	"strings"
	"testing"
)

func TestExecRunner(t *testing.T) {
	runner := NewExecRunner()
	ctx := context.Background()

	t.Run("CapturesOutput", func(t *testing.T) {
		result, err := runner.Run(ctx, "sh", "-c", "echo signed ok")
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.ExitCode != 0 {
			t.Errorf("ExitCode = %d, want 0", result.ExitCode)
		}
		if !strings.Contains(result.Output, "signed ok") {
			t.Errorf("Output = %q, want it to contain %q", result.Output, "signed ok")
		}
	})

	t.Run("NonZeroExitIsNotAnError", func(t *testing.T) {
		result, err := runner.Run(ctx, "sh", "-c", "echo bad >&2; exit 3")
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.ExitCode != 3 {
			t.Errorf("ExitCode = %d, want 3", result.ExitCode)
		}
		// stderr is part of the captured output.
		if !strings.Contains(result.Output, "bad") {
			t.Errorf("Output = %q, want it to contain %q", result.Output, "bad")
		}
	})

	t.Run("MissingExecutableIsASpawnError", func(t *testing.T) {
		_, err := runner.Run(ctx, "signpack-no-such-tool")
		if err == nil {
			t.Fatal("expected a spawn error for a missing executable")
		}
	})
}
