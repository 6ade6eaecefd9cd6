// Package client is the gRPC client of the vault daemon. It keeps the
// session token returned by setup and login and attaches it to every call.
package client
