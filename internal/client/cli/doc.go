// Package cli provides the interactive mdash command-line client.
//
// It wires configuration, the local token store, the backend client and the
// session and brand services, then serves a REPL. On start the stored session
// is resolved once; protected commands are gated by the session guard.
//
// Key features:
//   - Register / Login / Logout
//   - Business profile display and refresh
//   - Brand listing, creation, renaming and selection
//   - Social connections of the current brand
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, guard and runREPL for details.
package cli
