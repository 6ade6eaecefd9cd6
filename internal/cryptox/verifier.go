package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	VerifierSize = 32

	verifierInfo = "gophvault/verifier/v1"
)

// MakeVerifier derives a value that confirms a key without revealing it:
// HKDF-SHA256 over the key, salted with the vault salt and bound to a fixed
// context string. The output is independent of any encryption use of the key.
func MakeVerifier(key, salt []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	r := hkdf.New(sha256.New, key, salt, []byte(verifierInfo))
	out := make([]byte, VerifierSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, fmt.Errorf("verifier: %w", err)
	}
	return out, nil
}

// CheckVerifier recomputes the verifier for key and compares it with stored
// in constant time.
func CheckVerifier(key, salt, stored []byte) bool {
	candidate, err := MakeVerifier(key, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(candidate, stored) == 1
}
