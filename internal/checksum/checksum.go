// Package checksum fingerprints vault files so the index can tell whether a
// note file changed since it was last indexed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether data still has the recorded digest. An empty
// digest never matches.
func Matches(data []byte, sum string) bool {
	return sum != "" && Sum(data) == sum
}
