// Package auth hashes and verifies user credentials.
//
// New credentials are bcrypt hashes, which embed their own random salt and
// work factor. Credentials written by earlier releases use the
// "salt:hexdigest" PBKDF2-HMAC-SHA512 format; those still verify, and
// NeedsRehash reports them so callers can upgrade them after a login.
package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const (
	legacyIterations = 100000
	legacyKeyLength  = sha512.Size
)

// Cost is the bcrypt work factor used for new credentials.
var Cost = bcrypt.DefaultCost

// HashPassword returns a salted bcrypt credential for password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored credential.
func VerifyPassword(credential, password string) bool {
	if salt, digest, ok := splitLegacy(credential); ok {
		return verifyLegacy(salt, digest, password)
	}
	return bcrypt.CompareHashAndPassword([]byte(credential), []byte(password)) == nil
}

// NeedsRehash reports whether credential should be replaced with a fresh
// hash at the current Cost.
func NeedsRehash(credential string) bool {
	if _, _, ok := splitLegacy(credential); ok {
		return true
	}
	cost, err := bcrypt.Cost([]byte(credential))
	if err != nil {
		return true
	}
	return cost < Cost
}

func splitLegacy(credential string) (salt, digest string, ok bool) {
	if strings.HasPrefix(credential, "$2") {
		return "", "", false
	}
	salt, digest, ok = strings.Cut(credential, ":")
	if !ok || salt == "" || len(digest) != hex.EncodedLen(legacyKeyLength) {
		return "", "", false
	}
	return salt, digest, true
}

func verifyLegacy(salt, digest, password string) bool {
	want, err := hex.DecodeString(digest)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), legacyIterations, legacyKeyLength, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
