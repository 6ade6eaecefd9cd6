// Package models defines the persisted and in-memory shapes of vault data:
// the master key record, encrypted entries as stored, and their plaintext
// counterparts that only exist while the vault is unlocked.
package models
