package sessionflags

import (
	"fmt"
	"os"
	"regexp"

	"github.com/google/uuid"
)

// SessionIDEnvVar overrides the detected session identifier.
const SessionIDEnvVar = "TEAMDOCS_SESSION_ID"

// Session identifies the terminal session that owns a set of flags.
type Session struct {
	// ID names the session. It is safe to use in file names and redis keys.
	ID string

	// OwnerPID is the shell process whose lifetime bounds the session, or 0
	// when the session was named explicitly.
	OwnerPID int
}

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// CurrentSession resolves the session for this process. An explicit
// TEAMDOCS_SESSION_ID wins; otherwise the parent shell scopes the session.
// Processes re-parented to init have no shell to tie to and get a fresh
// random session.
func CurrentSession() Session {
	if id := os.Getenv(SessionIDEnvVar); id != "" {
		return Session{ID: SanitizeID(id)}
	}
	ppid := os.Getppid()
	if ppid <= 1 {
		return Session{ID: uuid.NewString()}
	}
	return Session{ID: fmt.Sprintf("ppid-%d", ppid), OwnerPID: ppid}
}

// SanitizeID replaces characters that are unsafe in paths and keys.
func SanitizeID(id string) string {
	return unsafeIDChars.ReplaceAllString(id, "_")
}
