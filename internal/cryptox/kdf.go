package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// KDFAlgorithm names a passphrase-based key derivation function. The value is
// persisted in the master key record, so existing names must never change.
type KDFAlgorithm string

const (
	KDFPBKDF2SHA256 KDFAlgorithm = "pbkdf2-sha256"
	KDFArgon2id     KDFAlgorithm = "argon2id"
)

const (
	KeySize   = 32 // AES-256
	SaltSize  = 32
	NonceSize = 12

	DefaultPBKDF2Iterations uint32 = 600_000
	DefaultArgon2Iterations uint32 = 3

	argon2Memory  = 64 * 1024 // KiB
	argon2Threads = 4
)

var (
	ErrUnsupportedKDF = errors.New("unsupported key derivation function")
	ErrInvalidKDF     = errors.New("invalid key derivation parameters")
)

// KDFParams selects the derivation function and its work factor. For PBKDF2
// Iterations is the HMAC iteration count, for Argon2id it is the time cost.
type KDFParams struct {
	Algorithm  KDFAlgorithm
	Iterations uint32
}

// DefaultKDFParams returns PBKDF2-HMAC-SHA256 with 600 000 iterations.
func DefaultKDFParams() KDFParams {
	return KDFParams{Algorithm: KDFPBKDF2SHA256, Iterations: DefaultPBKDF2Iterations}
}

// Validate reports whether p can be used by DeriveKey.
func (p KDFParams) Validate() error {
	switch p.Algorithm {
	case KDFPBKDF2SHA256, KDFArgon2id:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedKDF, p.Algorithm)
	}
	if p.Iterations == 0 {
		return fmt.Errorf("%w: iterations must be positive", ErrInvalidKDF)
	}
	return nil
}

// NewSalt returns SaltSize random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}
	return salt, nil
}

// DeriveKey turns a passphrase and salt into a KeySize key. It is
// deterministic and runs the full work factor for every input; there is no
// early exit on passphrase content.
func DeriveKey(passphrase, salt []byte, p KDFParams) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: empty salt", ErrInvalidKDF)
	}

	switch p.Algorithm {
	case KDFArgon2id:
		return argon2.IDKey(passphrase, salt, p.Iterations, argon2Memory, argon2Threads, KeySize), nil
	default:
		return pbkdf2.Key(passphrase, salt, int(p.Iterations), KeySize, sha256.New), nil
	}
}
