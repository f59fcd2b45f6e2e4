package values

import "path"

// Kind classifies an archive entry by the signing treatment it needs.
type Kind int

const (
	// KindNone marks entries that are copied through unchanged.
	KindNone Kind = iota
	// KindManaged marks managed-code library packages (.jar).
	KindManaged
	// KindNative marks native dynamic libraries (.dll).
	KindNative
)

// String returns the kind's canonical name.
func (k Kind) String() string {
	switch k {
	case KindManaged:
		return "managed-library"
	case KindNative:
		return "native-library"
	default:
		return "none"
	}
}

// Classify maps an archive entry name to its Kind. Pure and total:
// extension matching is case-sensitive, unknown extensions are KindNone.
func Classify(entryName string) Kind {
	switch path.Ext(entryName) {
	case ".jar":
		return KindManaged
	case ".dll":
		return KindNative
	default:
		return KindNone
	}
}
