// Package wire defines the gRPC contract between the vault daemon and its
// clients: request and response messages, the service descriptor and a JSON
// codec registered under the "json" content subtype.
package wire
