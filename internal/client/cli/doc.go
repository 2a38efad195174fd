// Package cli provides the interactive fintrack command-line client.
//
// It wires configuration, the local SQLite database, the offline queue, the
// connectivity watcher and the application services into a REPL. Mutations
// made while the server is unreachable are queued and replayed when it comes
// back; lists show queued and failed records next to the server's.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
