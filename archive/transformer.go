// Package archive rewrites distribution archives, routing signable entries
// through the signing pipeline and copying everything else unchanged.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/klauspost/compress/flate"

	"github.com/signpack/signpack/signing"
	"github.com/signpack/signpack/signing/entities"
	"github.com/signpack/signpack/signing/ports"
	"github.com/signpack/signpack/signing/values"
)

// Counters reports how many signable entries one archive contributed.
type Counters struct {
	Signed    int // entries whose checksum was signed for the first time
	FromCache int // entries served from the session cache
}

// Transformer rewrites archives one at a time against a shared session.
type Transformer struct {
	session *signing.Session
	signers map[values.Kind]ports.Signer
	logger  *slog.Logger
}

// NewTransformer creates a transformer bound to a session and its signer
// strategy table.
func NewTransformer(session *signing.Session, signers map[values.Kind]ports.Signer, logger *slog.Logger) *Transformer {
	return &Transformer{
		session: session,
		signers: signers,
		logger:  logger,
	}
}

// Transform reads srcPath and writes dstPath with every signable entry
// replaced by its signed payload. Entry names and order are preserved.
// dstPath must not already exist, and an incomplete destination is removed
// on every failure path.
func (t *Transformer) Transform(ctx context.Context, srcPath, dstPath string) (Counters, error) {
	var counters Counters

	src, err := zip.OpenReader(srcPath)
	if err != nil {
		return counters, fmt.Errorf("open source archive: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return counters, &entities.AlreadyExistsError{Path: dstPath}
		}
		return counters, fmt.Errorf("create destination archive: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = dst.Close()
			_ = os.Remove(dstPath)
		}
	}()

	w := zip.NewWriter(dst)
	// Release archives are written once and downloaded many times, so
	// re-compressed entries use maximum deflate.
	w.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, entry := range src.File {
		if err := t.transformEntry(ctx, w, entry, &counters); err != nil {
			_ = w.Close()
			return counters, err
		}
	}

	if err := w.Close(); err != nil {
		return counters, fmt.Errorf("finalize destination archive: %w", err)
	}
	if err := dst.Close(); err != nil {
		return counters, fmt.Errorf("close destination archive: %w", err)
	}
	committed = true
	return counters, nil
}

func (t *Transformer) transformEntry(ctx context.Context, w *zip.Writer, entry *zip.File, counters *Counters) error {
	kind := values.Classify(entry.Name)
	if entry.FileInfo().IsDir() || kind == values.KindNone {
		// Raw copy: the stored bytes pass through without re-compression.
		if err := w.Copy(entry); err != nil {
			return fmt.Errorf("copy entry %s: %w", entry.Name, err)
		}
		return nil
	}
	return t.signEntry(ctx, w, entry, kind, counters)
}

func (t *Transformer) signEntry(ctx context.Context, w *zip.Writer, entry *zip.File, kind values.Kind, counters *Counters) error {
	signer, ok := t.signers[kind]
	if !ok {
		return fmt.Errorf("no signer configured for %s entries", kind)
	}

	// The zip header's own CRC-32 is the cache key, so identical bytes
	// dedupe without being read first.
	artifact := entities.NewSignableArtifact(entry.Name, kind, values.Checksum(entry.CRC32))

	payload, hit, err := t.session.LookupOrCompute(artifact.Checksum(), func() ([]byte, error) {
		return t.signNew(ctx, signer, entry, artifact)
	})
	if err != nil {
		return err
	}
	if hit {
		counters.FromCache++
	} else {
		counters.Signed++
	}

	// The signed bytes go back under the original entry name.
	hdr := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: entry.Modified,
	}
	out, err := w.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", entry.Name, err)
	}
	if _, err := out.Write(payload); err != nil {
		return fmt.Errorf("write entry %s: %w", entry.Name, err)
	}
	return nil
}

// signNew materializes the entry into a scoped temporary file and hands it
// to the signer. The temporary file is removed on every exit path, signing
// failures included.
func (t *Transformer) signNew(ctx context.Context, signer ports.Signer, entry *zip.File, artifact *entities.SignableArtifact) ([]byte, error) {
	in, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", entry.Name, err)
	}
	defer func() { _ = in.Close() }()

	// The extension is kept so the tools recognize the file type.
	tmp, err := os.CreateTemp("", "signpack-*"+path.Ext(entry.Name))
	if err != nil {
		return nil, fmt.Errorf("create temporary artifact: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("materialize entry %s: %w", entry.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("materialize entry %s: %w", entry.Name, err)
	}

	t.logger.Info("signing library",
		"artifact", artifact.DisplayName(),
		"kind", artifact.Kind().String(),
		"checksum", artifact.Checksum().String())

	return signer.Sign(ctx, tmp.Name(), artifact.DisplayName())
}
