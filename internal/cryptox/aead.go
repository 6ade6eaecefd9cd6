package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophvault/internal/common"
)

var (
	ErrInvalidKey   = errors.New("invalid key size")
	ErrInvalidNonce = errors.New("invalid nonce size")
)

// NewNonce returns NonceSize random bytes. Call it once per Seal.
func NewNonce() ([]byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return nonce, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts plaintext with AES-256-GCM and returns ciphertext with the
// 16-byte tag appended. aad is authenticated but not encrypted and may be nil.
//
// The nonce must be exactly NonceSize bytes and must never have been used
// with this key before:
//
//	nonce, err := cryptox.NewNonce()
//	if err != nil {
//	    return err
//	}
//	ct, err := cryptox.Seal(key, nonce, []byte("p@ss"), []byte(entryID))
func Seal(key, nonce, plaintext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, ErrInvalidNonce
	}
	return gcm.Seal(nil, nonce, plaintext, aad), nil
}

// Open authenticates and decrypts a value produced by Seal. Any change to the
// ciphertext, tag, nonce or aad, as well as a wrong key, yields an error
// matching common.ErrIntegrity and no plaintext.
func Open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() || len(ciphertext) < gcm.Overhead() {
		return nil, common.ErrIntegrity
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, common.ErrIntegrity
	}
	return plaintext, nil
}
