package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/signpack/signpack/signing/ports"
)

// SignTool signs native dynamic libraries with the platform code-signing
// tool.
//
// Signing is idempotent: an artifact whose existing signature already
// verifies is returned unchanged, without invoking sign or timestamp.
// Otherwise the artifact moves through sign, timestamp and a final verify,
// and any non-zero exit aborts.
type SignTool struct {
	runner ports.ToolRunner
	logger *slog.Logger
	opts   Options
}

// NewSignTool creates the native-library signer variant.
func NewSignTool(runner ports.ToolRunner, logger *slog.Logger, opts Options) *SignTool {
	return &SignTool{
		runner: runner,
		logger: logger,
		opts:   opts,
	}
}

// Sign signs the artifact at path in place and returns the signed bytes.
func (s *SignTool) Sign(ctx context.Context, path string, displayName string) ([]byte, error) {
	verify, err := s.runner.Run(ctx, s.opts.SignToolTool, "verify", "/pa", path)
	if err != nil {
		return nil, err
	}
	if verify.Succeeded() {
		s.logger.Warn("library appears to be already signed, it will not be signed again",
			"artifact", displayName)
		return s.readBack(path)
	}

	// The sign/verify operations here report success through exit status
	// alone; no output marker is checked.
	steps := []struct {
		op   string
		args []string
	}{
		{"sign", []string{"sign", "/fd", s.opts.Digest, "/f", s.opts.Keystore, "/p", s.opts.Password, path}},
		{"timestamp", []string{"timestamp", "/t", s.opts.TSAURL, path}},
		{"verify", []string{"verify", "/pa", path}},
	}
	for _, step := range steps {
		result, err := s.runner.Run(ctx, s.opts.SignToolTool, step.args...)
		if err != nil {
			return nil, err
		}
		if err := checkResult(s.logger, s.opts.SignToolTool, step.op, displayName, "", result); err != nil {
			return nil, err
		}
	}

	return s.readBack(path)
}

func (s *SignTool) readBack(path string) ([]byte, error) {
	signed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signed artifact: %w", err)
	}
	return signed, nil
}
