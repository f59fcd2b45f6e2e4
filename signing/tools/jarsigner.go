package tools

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/signpack/signpack/signing/ports"
)

// JarSigner signs managed-code library packages with the JDK jarsigner
// tool: one sign invocation followed by one verify invocation, each judged
// by exit status and checked for its success marker.
type JarSigner struct {
	runner ports.ToolRunner
	logger *slog.Logger
	opts   Options
}

// NewJarSigner creates the managed-library signer variant.
func NewJarSigner(runner ports.ToolRunner, logger *slog.Logger, opts Options) *JarSigner {
	return &JarSigner{
		runner: runner,
		logger: logger,
		opts:   opts,
	}
}

// Sign signs the artifact at path in place and returns the signed bytes.
func (s *JarSigner) Sign(ctx context.Context, path string, displayName string) ([]byte, error) {
	args := []string{
		"-storetype", "pkcs12", "-strict",
		"-keystore", s.opts.Keystore,
		"-storepass", s.opts.Password,
		"-keypass", s.opts.Password,
		"-tsa", s.opts.TSAURL,
	}
	// jarsigner reaches the timestamp authority itself, so any outbound
	// proxy has to be handed to its JVM.
	if s.opts.ProxyHost != "" {
		args = append(args, "-J-Dhttp.proxyHost="+s.opts.ProxyHost)
	}
	if s.opts.ProxyPort != "" {
		args = append(args, "-J-Dhttp.proxyPort="+s.opts.ProxyPort)
	}
	args = append(args, path, s.opts.Alias)

	if err := s.invoke(ctx, "sign", displayName, "jar signed", args); err != nil {
		return nil, err
	}

	verifyArgs := []string{"-verify", "-storetype", "pkcs12", path}
	if err := s.invoke(ctx, "verify", displayName, "jar verified", verifyArgs); err != nil {
		return nil, err
	}

	signed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signed artifact: %w", err)
	}
	return signed, nil
}

func (s *JarSigner) invoke(ctx context.Context, op, artifact, marker string, args []string) error {
	result, err := s.runner.Run(ctx, s.opts.JarSignerTool, args...)
	if err != nil {
		return err
	}
	return checkResult(s.logger, s.opts.JarSignerTool, op, artifact, marker, result)
}
