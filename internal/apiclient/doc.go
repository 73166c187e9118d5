// Package apiclient talks to the teamdocs backend.
//
// It covers the five endpoints the client core depends on: team detail, the
// task list, a team's documents, document deletion and the Google Drive
// login URL. Responses are decoded into internal/model types and validated
// before they reach the aggregator, so downstream code can rely on positive
// ids and known role and status values.
//
// Authentication against the backend itself is out of scope: the caller
// supplies a bearer token and, optionally, the backend session cookie that
// carries the Drive credentials.
package apiclient
