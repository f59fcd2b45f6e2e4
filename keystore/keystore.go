// Package keystore loads and sanity-checks the PKCS#12 signing credential.
package keystore

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/signpack/signpack/signing/entities"
)

// expiryWarningWindow is how close to its NotAfter date the certificate may
// be before loading warns the operator.
const expiryWarningWindow = 30 * 24 * time.Hour

// Keystore is the unlocked signing credential. The unlocking secret is used
// during Load and never retained here.
type Keystore struct {
	Path        string
	Alias       string
	Certificate *x509.Certificate
	Fingerprint string // hex SHA-256 of the certificate DER
	NotAfter    time.Time
}

// Load decodes the PKCS#12 container at path and checks that the enclosed
// certificate is usable for signing. When expectedFingerprint is non-empty
// it must match the certificate's SHA-256 fingerprint. A certificate close
// to expiry is a warning; an expired one is an error.
//
// alias is recorded for the signing tools but cannot be validated here:
// DecodeChain does not surface the container's friendly names. A wrong
// alias is caught by jarsigner on the first sign invocation. The
// fingerprint check is the credential identity check that runs up front.
func Load(path, alias, password, expectedFingerprint string, logger *slog.Logger) (*Keystore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &entities.CredentialError{Path: path, Reason: "keystore unreadable", Err: err}
	}

	key, cert, _, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return nil, &entities.CredentialError{Path: path, Reason: "keystore cannot be decoded (wrong password?)", Err: err}
	}
	if key == nil || cert == nil {
		return nil, &entities.CredentialError{Path: path, Reason: "keystore holds no signing key"}
	}

	sum := sha256.Sum256(cert.Raw)
	fingerprint := hex.EncodeToString(sum[:])
	if expectedFingerprint != "" && !strings.EqualFold(expectedFingerprint, fingerprint) {
		return nil, &entities.CredentialError{
			Path:   path,
			Reason: fmt.Sprintf("certificate fingerprint mismatch: expected %s, got %s", strings.ToLower(expectedFingerprint), fingerprint),
		}
	}

	now := time.Now()
	switch {
	case now.After(cert.NotAfter):
		return nil, &entities.CredentialError{
			Path:   path,
			Reason: "certificate expired " + cert.NotAfter.Format(time.RFC3339),
		}
	case now.Add(expiryWarningWindow).After(cert.NotAfter):
		logger.Warn("signing certificate expires soon",
			"subject", cert.Subject.CommonName,
			"not_after", cert.NotAfter)
	}

	return &Keystore{
		Path:        path,
		Alias:       alias,
		Certificate: cert,
		Fingerprint: fingerprint,
		NotAfter:    cert.NotAfter,
	}, nil
}
