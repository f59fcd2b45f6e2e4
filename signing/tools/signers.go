package tools

import (
	"log/slog"

	"github.com/signpack/signpack/signing/ports"
	"github.com/signpack/signpack/signing/values"
)

// Options carries everything the tool adapters need: executable paths,
// keystore credentials and timestamp-authority settings. The password is
// held for the lifetime of the run and never written anywhere.
type Options struct {
	JarSignerTool string
	SignToolTool  string
	Keystore      string
	Alias         string
	Password      string
	TSAURL        string
	ProxyHost     string
	ProxyPort     string
	Digest        string // file digest algorithm for native signing, e.g. sha256
}

// Signers builds the strategy table mapping artifact kind to its signer
// variant. The transformer selects from this table instead of branching on
// entry names.
func Signers(runner ports.ToolRunner, logger *slog.Logger, opts Options) map[values.Kind]ports.Signer {
	return map[values.Kind]ports.Signer{
		values.KindManaged: NewJarSigner(runner, logger, opts),
		values.KindNative:  NewSignTool(runner, logger, opts),
	}
}
