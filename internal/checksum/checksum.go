// Package checksum computes content digests used as entity revisions.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SumFields digests an ordered list of fields, separated by a unit separator
// so that field boundaries cannot collide with field content.
func SumFields(fields ...string) string {
	return Sum([]byte(strings.Join(fields, "\x1f")))
}
