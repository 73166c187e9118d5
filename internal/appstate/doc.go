// Package appstate holds the application-wide Google Drive connection flag.
//
// The auth gate, the document opener and the OAuth callback all share one
// Store. The callback is the only writer that sets the flag to connected;
// the others subscribe and re-evaluate when it changes. A FileBackend makes
// the flag outlive a single invocation, and FileBackend.Watch lets a running
// command observe a callback handled by another process.
package appstate
