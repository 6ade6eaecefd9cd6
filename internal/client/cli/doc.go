// Package cli provides the interactive GophVault command-line client.
//
// The REPL talks to the local vault daemon through client.Client. Typical
// flow: setup (first run) or login, then list, add, edit, delete and
// generate, and finally logout. Passphrases are read without echo when
// stdin is a terminal.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
