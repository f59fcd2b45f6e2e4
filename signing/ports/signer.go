// Package ports declares the boundary interfaces of the signing pipeline.
package ports

import "context"

// ToolResult captures the observable outcome of one external tool
// invocation: its exit status and its combined stdout/stderr.
type ToolResult struct {
	ExitCode int
	Output   string
}

// Succeeded reports whether the tool judged its own operation successful.
func (r ToolResult) Succeeded() bool {
	return r.ExitCode == 0
}

// ToolRunner runs an external executable to completion and captures its
// output. The call blocks until the tool exits; there is no timeout.
//
// The error return reports spawn failures only. A tool that started and
// exited non-zero is reported through ToolResult.ExitCode with a nil error.
type ToolRunner interface {
	Run(ctx context.Context, tool string, args ...string) (ToolResult, error)
}

// Signer signs the artifact materialized at path and returns the signed
// bytes. displayName is the artifact's name inside its archive, used for
// reporting only.
type Signer interface {
	Sign(ctx context.Context, path string, displayName string) ([]byte, error)
}
