package keystore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/signpack/signpack/signing"
	"github.com/signpack/signpack/signing/entities"
)

// makeKeystore writes a PKCS#12 container holding a self-signed certificate
// with the given expiry, and returns its path plus the certificate DER.
func makeKeystore(t *testing.T, password string, notAfter time.Time) (string, []byte) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "codesigning"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pfx, err := pkcs12.Modern.Encode(key, cert, nil, password)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "codesigning.p12")
	require.NoError(t, os.WriteFile(path, pfx, 0o600))
	return path, der
}

func TestLoad(t *testing.T) {
	logger := signing.NewTestLogger()

	t.Run("Success", func(t *testing.T) {
		path, der := makeKeystore(t, "secret", time.Now().Add(365*24*time.Hour))

		ks, err := Load(path, "codesigning", "secret", "", logger)
		require.NoError(t, err)
		assert.Equal(t, "codesigning", ks.Alias)
		assert.Equal(t, "codesigning", ks.Certificate.Subject.CommonName)

		sum := sha256.Sum256(der)
		assert.Equal(t, hex.EncodeToString(sum[:]), ks.Fingerprint)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		path, _ := makeKeystore(t, "secret", time.Now().Add(365*24*time.Hour))

		_, err := Load(path, "codesigning", "not-the-password", "", logger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrCredential))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.p12"), "codesigning", "secret", "", logger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrCredential))
	})

	t.Run("FingerprintMatch", func(t *testing.T) {
		path, der := makeKeystore(t, "secret", time.Now().Add(365*24*time.Hour))
		sum := sha256.Sum256(der)

		// Matching is case-insensitive on the hex digits.
		_, err := Load(path, "codesigning", "secret", hex.EncodeToString(sum[:]), logger)
		assert.NoError(t, err)
	})

	t.Run("FingerprintMismatch", func(t *testing.T) {
		path, _ := makeKeystore(t, "secret", time.Now().Add(365*24*time.Hour))

		_, err := Load(path, "codesigning", "secret", "deadbeef", logger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrCredential))
	})

	t.Run("ExpiredCertificate", func(t *testing.T) {
		path, _ := makeKeystore(t, "secret", time.Now().Add(-time.Minute))

		_, err := Load(path, "codesigning", "secret", "", logger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrCredential))
	})

	t.Run("NearExpiryIsOnlyAWarning", func(t *testing.T) {
		path, _ := makeKeystore(t, "secret", time.Now().Add(10*24*time.Hour))

		ks, err := Load(path, "codesigning", "secret", "", logger)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(10*24*time.Hour), ks.NotAfter, time.Hour)
	})
}
