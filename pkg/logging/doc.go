// Package logging provides subsystem-scoped structured logging for teamdocs.
//
// It is a thin layer over log/slog: every entry carries a "subsystem"
// attribute so output from the redirect flow, the auth gate, the workspace
// loader and the deletion flow can be told apart and filtered.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Workspace", "Loaded team %d", teamID)
//	logging.Warn("Redirect", "Redirect already in progress, suppressing")
//	logging.Error("Deletion", err, "Failed to delete document %d", docID)
//
// Subsystems in use:
//
//   - SessionFlags: cross-invocation redirect flags
//   - AppState: shared connection status
//   - Redirect: authorization URL hand-off
//   - AuthGate: gate state transitions
//   - Workspace: team/task/document aggregation
//   - Deletion: document deletion flow
//   - Callback: local OAuth callback listener
//   - APIClient: backend HTTP calls
//   - Config: configuration loading
//
// Credential values (tokens, session cookies) must never be passed to the
// logger; log the endpoint or key name instead.
package logging
