package analyzer

import (
	"crypto/sha1"
	"encoding/hex"
)

// Hash returns the content hash used as the cache key: the hex SHA-1 digest of
// the exact file bytes.
func Hash(content []byte) string {
	sum := sha1.Sum(content)
	return hex.EncodeToString(sum[:])
}
