package tokens

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sha256Hex is used to store token values hashed instead of raw.
func Sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
