package signing

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/signpack/signpack/signing/ports"
)

// MockSigner implements ports.Signer for testing
type MockSigner struct {
	Payload []byte
	Err     error
	Calls   []string // display names in invocation order
}

func (m *MockSigner) Sign(ctx context.Context, path string, displayName string) ([]byte, error) {
	m.Calls = append(m.Calls, displayName)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Payload != nil {
		return m.Payload, nil
	}
	return os.ReadFile(path)
}

// MockRunner implements ports.ToolRunner with scripted results
type MockRunner struct {
	Results []ports.ToolResult // consumed in order; the last one repeats
	Err     error
	Calls   [][]string // tool followed by args, per invocation
}

func (m *MockRunner) Run(ctx context.Context, tool string, args ...string) (ports.ToolResult, error) {
	m.Calls = append(m.Calls, append([]string{tool}, args...))
	if m.Err != nil {
		return ports.ToolResult{}, m.Err
	}
	if len(m.Results) == 0 {
		return ports.ToolResult{}, nil
	}
	result := m.Results[0]
	if len(m.Results) > 1 {
		m.Results = m.Results[1:]
	}
	return result, nil
}

// NewTestLogger returns a logger that discards all records.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
