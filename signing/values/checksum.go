// Package values defines the value objects of the signing pipeline.
package values

import (
	"fmt"
	"hash/crc32"
)

// Checksum is the content checksum used to deduplicate signing work.
//
// It is the zip format's own per-entry CRC-32, so entries carrying identical
// bytes share a checksum without re-reading their contents. CRC-32 is not
// collision resistant: at very large batch sizes two distinct artifacts can
// collide, and the second would silently receive the first one's signed
// bytes. Accepted risk for bounded release batches.
type Checksum uint32

// ChecksumOf computes the checksum of data with the polynomial the zip
// format uses (IEEE).
func ChecksumOf(data []byte) Checksum {
	return Checksum(crc32.ChecksumIEEE(data))
}

// String returns the checksum as eight hex digits.
func (c Checksum) String() string {
	return fmt.Sprintf("%08x", uint32(c))
}
