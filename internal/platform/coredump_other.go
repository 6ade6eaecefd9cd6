//go:build !unix

// Package platform applies process-level hardening.
package platform

// DisableCoreDumps is a no-op where RLIMIT_CORE does not exist.
func DisableCoreDumps() error { return nil }
