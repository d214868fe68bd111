// Package sha256 derives stable hex digests, used to name assets whose URL
// has no usable basename.
package sha256

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hex returns the full hex digest of data.
func Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Short returns the first n hex characters of the digest. n is clamped to
// the digest length.
func Short(data []byte, n int) string {
	digest := Hex(data)
	if n <= 0 || n > len(digest) {
		return digest
	}
	return digest[:n]
}
