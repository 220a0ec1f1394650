package auth

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashAndVerify(t *testing.T) {
	credential, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credential == "correct horse" {
		t.Fatal("credential must not be the plain password")
	}
	if !VerifyPassword(credential, "correct horse") {
		t.Error("expected password to verify")
	}
	if VerifyPassword(credential, "wrong horse") {
		t.Error("expected wrong password to be rejected")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, _ := HashPassword("password123")
	b, _ := HashPassword("password123")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestLegacyCredential(t *testing.T) {
	salt := strings.Repeat("ab", 32)
	digest := pbkdf2.Key([]byte("password123"), []byte(salt), 100000, 64, sha512.New)
	credential := salt + ":" + hex.EncodeToString(digest)

	if !VerifyPassword(credential, "password123") {
		t.Error("expected legacy credential to verify")
	}
	if VerifyPassword(credential, "password124") {
		t.Error("expected wrong password to be rejected")
	}
	if !NeedsRehash(credential) {
		t.Error("legacy credentials should be rehashed")
	}
}

func TestNeedsRehash(t *testing.T) {
	current, _ := HashPassword("password123")
	if NeedsRehash(current) {
		t.Error("a hash at the current cost should not need rehashing")
	}
	if !NeedsRehash("garbage") {
		t.Error("unparseable credentials should be rehashed")
	}
}

func TestMalformedLegacyCredential(t *testing.T) {
	if VerifyPassword("salt:nothex", "password123") {
		t.Error("malformed credential must not verify")
	}
	if VerifyPassword("", "") {
		t.Error("empty credential must not verify")
	}
}
