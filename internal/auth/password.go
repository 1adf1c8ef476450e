package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	hashIterations = 100_000
	hashKeyLen     = sha256.Size
)

// Hasher derives password hashes with PBKDF2-HMAC-SHA256 and a fixed salt.
type Hasher struct {
	salt []byte
}

func NewHasher(salt string) *Hasher {
	return &Hasher{salt: []byte(salt)}
}

// Hash returns the hex-encoded derived key of password.
func (h *Hasher) Hash(password string) string {
	key := pbkdf2.Key([]byte(password), h.salt, hashIterations, hashKeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// Verify checks password against stored. A stored value that is not a hex
// digest is a legacy plaintext password and is compared directly.
func (h *Hasher) Verify(password, stored string) bool {
	if !IsHash(stored) {
		return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
	}
	return subtle.ConstantTimeCompare([]byte(h.Hash(password)), []byte(stored)) == 1
}

// IsHash reports whether stored looks like a value produced by Hash.
func IsHash(stored string) bool {
	if len(stored) != hashKeyLen*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}
