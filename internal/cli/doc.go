// Package cli holds the terminal presentation layer of teamdocs.
//
// It turns workspace snapshots into go-pretty tables or JSON/YAML documents,
// shows a spinner while the Drive connection is pending, asks for
// confirmation through readline, and defines the typed errors that cmd maps
// to process exit codes:
//
//	0  success
//	1  any other error
//	2  Google Drive connection required (a redirect was started or is pending)
//	3  the redirect or OAuth callback failed
//
// Nothing here talks to the backend. Commands assemble the domain pieces
// (workspace, permission, deletion, authgate) and hand the results to this
// package for display.
package cli
