package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signpack/signpack/signing"
	"github.com/signpack/signpack/signing/entities"
	"github.com/signpack/signpack/signing/ports"
)

func jarOptions() Options {
	return Options{
		JarSignerTool: "jarsigner",
		Keystore:      "/keys/codesigning.p12",
		Alias:         "codesigning",
		Password:      "secret",
		TSAURL:        "http://tsa.example/stamp",
		ProxyHost:     "proxy.local",
		ProxyPort:     "3128",
		Digest:        "sha256",
	}
}

func writeArtifact(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestJarSignerSign(t *testing.T) {
	ctx := context.Background()

	t.Run("SignThenVerifyGrammar", func(t *testing.T) {
		path := writeArtifact(t, "library.jar", []byte("jar bytes"))
		runner := &signing.MockRunner{Results: []ports.ToolResult{
			{ExitCode: 0, Output: "jar signed."},
			{ExitCode: 0, Output: "jar verified."},
		}}
		signer := NewJarSigner(runner, signing.NewTestLogger(), jarOptions())

		signed, err := signer.Sign(ctx, path, "library.jar")
		require.NoError(t, err)
		assert.Equal(t, []byte("jar bytes"), signed, "signed bytes are read back from the artifact")

		require.Len(t, runner.Calls, 2)
		assert.Equal(t, []string{
			"jarsigner",
			"-storetype", "pkcs12", "-strict",
			"-keystore", "/keys/codesigning.p12",
			"-storepass", "secret",
			"-keypass", "secret",
			"-tsa", "http://tsa.example/stamp",
			"-J-Dhttp.proxyHost=proxy.local",
			"-J-Dhttp.proxyPort=3128",
			path, "codesigning",
		}, runner.Calls[0])
		assert.Equal(t, []string{
			"jarsigner", "-verify", "-storetype", "pkcs12", path,
		}, runner.Calls[1])
	})

	t.Run("NoProxyArgsWithoutProxy", func(t *testing.T) {
		path := writeArtifact(t, "library.jar", []byte("jar bytes"))
		runner := &signing.MockRunner{}
		opts := jarOptions()
		opts.ProxyHost = ""
		opts.ProxyPort = ""
		signer := NewJarSigner(runner, signing.NewTestLogger(), opts)

		_, err := signer.Sign(ctx, path, "library.jar")
		require.NoError(t, err)

		for _, arg := range runner.Calls[0] {
			assert.NotContains(t, arg, "proxy")
		}
	})

	t.Run("NonZeroSignExitFails", func(t *testing.T) {
		path := writeArtifact(t, "library.jar", []byte("jar bytes"))
		runner := &signing.MockRunner{Results: []ports.ToolResult{
			{ExitCode: 1, Output: "keystore was tampered with"},
		}}
		signer := NewJarSigner(runner, signing.NewTestLogger(), jarOptions())

		_, err := signer.Sign(ctx, path, "library.jar")
		require.Error(t, err)
		assert.True(t, errors.Is(err, entities.ErrSigningFailed))

		var sigErr *entities.SigningError
		require.True(t, errors.As(err, &sigErr))
		assert.Equal(t, "sign", sigErr.Op)
		assert.Equal(t, 1, sigErr.ExitCode)
		assert.Len(t, runner.Calls, 1, "verify must not run after a failed sign")
	})

	t.Run("NonZeroVerifyExitFails", func(t *testing.T) {
		path := writeArtifact(t, "library.jar", []byte("jar bytes"))
		runner := &signing.MockRunner{Results: []ports.ToolResult{
			{ExitCode: 0, Output: "jar signed."},
			{ExitCode: 1, Output: "unable to verify"},
		}}
		signer := NewJarSigner(runner, signing.NewTestLogger(), jarOptions())

		_, err := signer.Sign(ctx, path, "library.jar")
		var sigErr *entities.SigningError
		require.True(t, errors.As(err, &sigErr))
		assert.Equal(t, "verify", sigErr.Op)
	})

	t.Run("MissingMarkerIsOnlyAWarning", func(t *testing.T) {
		path := writeArtifact(t, "library.jar", []byte("jar bytes"))
		runner := &signing.MockRunner{Results: []ports.ToolResult{
			{ExitCode: 0, Output: "something unexpected"},
			{ExitCode: 0, Output: "also unexpected"},
		}}
		signer := NewJarSigner(runner, signing.NewTestLogger(), jarOptions())

		// The tool claims success, so the odd output must not fail the run.
		_, err := signer.Sign(ctx, path, "library.jar")
		require.NoError(t, err)
	})
}
