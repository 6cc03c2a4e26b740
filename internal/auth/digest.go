// Package auth derives and recognizes the stored form of passwords.
package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters
const (
	digestIter   = 4096
	digestKeyLen = 32
)

// Digest derives the stored form of a password. The login keys the
// derivation, so the same password stores differently for different users
// and verification needs no separate salt column.
func Digest(login, password string) string {
	key := pbkdf2.Key([]byte(password), []byte(login), digestIter, digestKeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// IsDigest reports whether a stored credential is already in digest form.
// Anything else is treated as a legacy plaintext password.
func IsDigest(s string) bool {
	if len(s) != hex.EncodedLen(digestKeyLen) {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
