// Package cli provides the interactive familystock command-line client.
//
// It wires configuration, the local SQLite store, the Supabase session and
// the sync layer into an interactive REPL that works online and offline.
// Typical flow: restore or prompt for credentials, start a background
// connectivity watcher, and execute user commands; mutations commit locally
// first and sync in the background.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
