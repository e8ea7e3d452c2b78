package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashIdentity returns a filesystem-safe identifier for a user identity.
func HashIdentity(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
