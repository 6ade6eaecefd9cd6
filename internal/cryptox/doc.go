// Package cryptox holds the cryptographic building blocks of the vault:
// master key derivation, AES-256-GCM sealing of individual fields and the
// verifier used to check a derived key at login.
//
// Nothing in this package keeps state or generates nonces on its own behalf.
// Callers own the key bytes and must request a fresh nonce from NewNonce for
// every Seal; reusing a nonce with the same key breaks GCM completely.
package cryptox
