// Package cryptox hashes and verifies user passwords with argon2id.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	saltSize     = 16
	keySize      = 32
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// DeriveKey stretches password with salt.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// HashPassword returns the derived key for password together with the fresh
// random salt it was derived with.
func HashPassword(password string) (hash, salt []byte) {
	salt = common.GenerateRandByteArray(saltSize)
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return DeriveKey(pw, salt), salt
}

// VerifyPassword compares in constant time.
func VerifyPassword(password string, hash, salt []byte) bool {
	pw := []byte(password)
	defer common.WipeByteArray(pw)
	return subtle.ConstantTimeCompare(DeriveKey(pw, salt), hash) == 1
}
