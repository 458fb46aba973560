// Package hash provides the xxHash64 helpers used to fingerprint serialized output.
package hash

import "github.com/cespare/xxhash/v2"

// Sum64 computes the xxHash64 of a complete document.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// NewDigest returns a streaming xxHash64 digest. Writing the chunks of a
// document in order yields the same Sum64 as hashing the whole document.
func NewDigest() *xxhash.Digest {
	return xxhash.New()
}
