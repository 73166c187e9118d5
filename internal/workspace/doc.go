// Package workspace loads and holds the state of one team workspace.
//
// An Aggregator fetches the team, then every task visible to the user
// (filtered to the team locally), then the team's documents. The first two
// are required; documents are optional and a failure there yields an empty
// collection. Calls are made one after another, never in parallel.
//
// Each LoadTeam call takes a new generation. Results belonging to an older
// generation are dropped with ErrStaleLoad, so a slow first load can never
// overwrite a newer one.
//
// Opener gates navigation to the document viewer on the Drive connection.
package workspace
