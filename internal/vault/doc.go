// Package vault orchestrates setup, login, logout and entry CRUD on top of
// a session.Session and a RecordStore.
//
// Service is the only producer and consumer of plaintext entries. Every
// operation that needs the key runs its whole body, store calls included,
// inside session.WithKey: a Locked vault fails with common.ErrSessionLocked
// before the store is touched, and a concurrent Logout waits for the
// operation to finish. Nonces are generated here on every write; callers
// cannot supply them.
package vault
