package entities

import (
	"path"

	"github.com/signpack/signpack/signing/values"
)

// SignableArtifact is the signing pipeline's view of one archive entry that
// requires a signature.
type SignableArtifact struct {
	name     string
	kind     values.Kind
	checksum values.Checksum
}

// NewSignableArtifact creates a signable artifact view.
func NewSignableArtifact(name string, kind values.Kind, checksum values.Checksum) *SignableArtifact {
	return &SignableArtifact{
		name:     name,
		kind:     kind,
		checksum: checksum,
	}
}

// Name returns the entry's relative path within its archive.
func (a *SignableArtifact) Name() string {
	return a.name
}

// DisplayName returns the artifact's base name, used for reporting and for
// the signing tools' output.
func (a *SignableArtifact) DisplayName() string {
	return path.Base(a.name)
}

// Kind returns the artifact's classified kind.
func (a *SignableArtifact) Kind() values.Kind {
	return a.kind
}

// Checksum returns the artifact's content checksum.
func (a *SignableArtifact) Checksum() values.Checksum {
	return a.checksum
}
