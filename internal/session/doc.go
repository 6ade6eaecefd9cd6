// Package session implements the lock state of the vault.
//
// A Session starts Locked. Unlock moves the derived key into a locked,
// read-only memguard buffer and switches to Unlocked; Lock destroys the
// buffer and switches back. The key is reachable only through WithKey, which
// holds a read lock for the duration of the callback, so Lock waits for every
// in-flight callback before wiping the key.
//
// With an idle timeout configured, every successful WithKey pushes the
// expiry forward. An expired session is treated as Locked and its key is
// destroyed on the next access or by Watch.
package session
