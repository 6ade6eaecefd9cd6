package common

import "errors"

// Callers should match these values with errors.Is; storage layers wrap them
// with %w to keep context.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors.
	ErrorValidation       = errors.New("validation error")
	ErrPassphraseTooShort = errors.New("passphrase is too short")

	// Vault lifecycle errors.
	ErrAlreadyInitialized = errors.New("vault is already initialized")
	ErrNotInitialized     = errors.New("vault is not initialized")
	ErrAlreadyUnlocked    = errors.New("vault is already unlocked")

	// ErrAuthentication is returned for any failed login. It never says
	// whether the passphrase or the stored verifier was at fault.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSessionLocked is returned by every operation that needs the master
	// key while the session is locked or has expired.
	ErrSessionLocked = errors.New("vault is locked")

	// ErrIntegrity means AEAD verification failed: the ciphertext, nonce or
	// associated data was altered or the wrong key was used.
	ErrIntegrity = errors.New("integrity check failed")

	// ErrInvalidPolicy is returned by the password generator.
	ErrInvalidPolicy = errors.New("invalid generator policy")

	// Transport errors.
	ErrInvalidToken = errors.New("invalid token")
)
