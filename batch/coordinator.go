// Package batch orchestrates a signing run over a directory of archives.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/signpack/signpack/archive"
	"github.com/signpack/signpack/signing"
	"github.com/signpack/signpack/signing/entities"
	"github.com/signpack/signpack/signing/ports"
	"github.com/signpack/signpack/signing/values"
)

// DefaultGlob matches the archives a run picks up from the source
// directory.
const DefaultGlob = "*.zip"

// Coordinator processes every archive in a source directory against one
// shared signing session. The first unrecovered error from any archive
// aborts the whole batch.
type Coordinator struct {
	signers map[values.Kind]ports.Signer
	glob    string
	logger  *slog.Logger
}

// NewCoordinator creates a coordinator. An empty glob falls back to
// DefaultGlob.
func NewCoordinator(signers map[values.Kind]ports.Signer, glob string, logger *slog.Logger) *Coordinator {
	if glob == "" {
		glob = DefaultGlob
	}
	return &Coordinator{
		signers: signers,
		glob:    glob,
		logger:  logger,
	}
}

// Run signs every matching archive in srcDir, writing one output archive of
// the same name per input under dstDir.
func (c *Coordinator) Run(ctx context.Context, srcDir, dstDir string) error {
	if err := c.preflight(srcDir, dstDir); err != nil {
		return err
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(srcDir, c.glob))
	if err != nil {
		return &entities.ConfigError{Path: srcDir, Reason: fmt.Sprintf("bad archive pattern %q: %v", c.glob, err)}
	}
	// Directory enumeration order is filesystem-dependent; sort so runs
	// are reproducible.
	sort.Strings(matches)

	session := signing.NewSession()
	transformer := archive.NewTransformer(session, c.signers, c.logger)

	for _, srcPath := range matches {
		name := filepath.Base(srcPath)
		c.logger.Info("processing assembly file", "archive", name)

		counters, err := transformer.Transform(ctx, srcPath, filepath.Join(dstDir, name))
		if err != nil {
			return fmt.Errorf("archive %s: %w", name, err)
		}

		c.logger.Info("finished processing assembly file",
			"archive", name,
			"signed", counters.Signed,
			"from_cache", counters.FromCache)
	}

	c.logger.Info("all done",
		"signed", session.Signed(),
		"from_cache", session.FromCache())
	return nil
}

// preflight validates both directories before anything is signed. The
// destination must be empty so a run can never clobber a previous one.
func (c *Coordinator) preflight(srcDir, dstDir string) error {
	checks := []struct {
		path string
		what string
	}{
		{srcDir, "folder with unsigned archives does not exist"},
		{dstDir, "folder for signed archives does not exist, please create"},
	}
	for _, check := range checks {
		info, err := os.Stat(check.path)
		if err != nil || !info.IsDir() {
			return &entities.ConfigError{Path: check.path, Reason: check.what}
		}
	}

	existing, err := os.ReadDir(dstDir)
	if err != nil {
		return &entities.ConfigError{Path: dstDir, Reason: fmt.Sprintf("cannot list destination: %v", err)}
	}
	if len(existing) > 0 {
		return &entities.ConfigError{Path: dstDir, Reason: "destination folder is not empty"}
	}
	return nil
}
