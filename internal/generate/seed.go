package generate

import (
	"crypto/md5"
	"encoding/binary"

	"golang.org/x/text/unicode/norm"
)

// IdentifierSeed derives a deterministic integer seed from a test
// identifier string such as "TestCheckout/expired_card".
//
// The identifier is NFC-normalized first so differently composed but
// canonically equal strings map to the same seed, then hashed with MD5 and
// truncated to 32 bits. The algorithm is fixed and cross-process stable; it
// must never depend on a randomized hash.
func IdentifierSeed(id string) int64 {
	normalized := norm.NFC.String(id)
	sum := md5.Sum([]byte(normalized))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}
