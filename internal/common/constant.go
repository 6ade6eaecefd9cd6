// Package common contains shared constants, sentinel errors and small helpers
// used across GophVault components.
package common

// SessionTokenHeaderName is the gRPC metadata key used to carry the session
// token issued by setup and login.
const SessionTokenHeaderName = "session_token"

// MinPassphraseLength is the shortest master passphrase accepted at setup.
const MinPassphraseLength = 8
