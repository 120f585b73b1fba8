package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashPassword returns the lowercase hex SHA-256 digest of password.
//
// The digest is unsalted and unkeyed so that hashes stored by earlier
// deployments keep verifying. It is not a secure credential scheme.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to storedHash.
func VerifyPassword(password, storedHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(storedHash)) == 1
}
