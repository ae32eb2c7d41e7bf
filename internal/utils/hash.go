package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashBytes generates a lowercase hex SHA256 digest of a byte buffer
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
