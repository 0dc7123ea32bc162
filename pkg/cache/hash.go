package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash returns the full 64-character hex SHA-256 of data. Layout keys
// start from a document's serialized bytes hashed with this; the full
// digest is kept so distinct documents cannot share a key.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey derives a namespaced cache key from the given components.
// Each component is written into the digest with a trailing NUL so
// adjacent values cannot collide by concatenation.
func hashKey(prefix string, parts ...any) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%#v\x00", p)
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}
