package persist

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ContentHash returns the hex-encoded BLAKE3 digest of data, used to key the
// repo-map cache by file content rather than mtime.
func ContentHash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortHash returns the first 8 hex characters of the MD5 digest of s, a
// compact content-equality fingerprint. The review gate does not use it; its
// staged-content fingerprint is SHA-256.
func ShortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:8]
}
