package cmd

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdocs/internal/cli"
	"teamdocs/internal/redirect"
	"teamdocs/internal/sessionflags"
)

type scriptedLines struct {
	lines []string
}

func (s *scriptedLines) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedLines) SetPrompt(string) {}
func (s *scriptedLines) Close() error     { return nil }

func answer(t *testing.T, lines ...string) {
	t.Helper()
	original := newPrompter
	newPrompter = func(io.Writer) (*cli.Prompter, error) {
		return cli.NewPrompterWithReader(&scriptedLines{lines: lines}), nil
	}
	t.Cleanup(func() { newPrompter = original })
}

func TestDocOpen_NotConnectedStartsRedirect(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, memberID, "")
	rt := env.runtime(t)
	nav := &redirect.RecordingNavigator{}
	useNavigator(rt, nav)

	err := runDocOpen(context.Background(), rt, teamID, 100)
	var required *cli.DriveConnectionRequiredError
	require.ErrorAs(t, err, &required)
	assert.False(t, required.Pending)
	assert.Equal(t, cli.ExitDriveConnectionRequired, cli.ExitCode(err))

	require.Len(t, nav.URLs(), 1)
	assert.Contains(t, nav.URLs()[0], "accounts.example.test")

	path, ok, err := rt.flags.Get(sessionflags.KeyReturnPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/team/7", path)

	// A second attempt in the same session is suppressed.
	err = runDocOpen(context.Background(), rt, teamID, 100)
	require.ErrorAs(t, err, &required)
	assert.True(t, required.Pending)
	assert.Len(t, nav.URLs(), 1)
	assert.Equal(t, 1, backend.Calls(http.MethodGet, "/api/google-drive/login/"))
}

func TestDocOpen_Connected(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, memberID, "")
	rt := env.runtime(t)
	nav := &redirect.RecordingNavigator{}
	useNavigator(rt, nav)
	require.NoError(t, rt.store.SetConnected(true))

	require.NoError(t, runDocOpen(context.Background(), rt, teamID, 101))
	assert.Equal(t, []string{"http://frontend.test/document/101"}, nav.URLs())
	assert.Zero(t, backend.Calls(http.MethodGet, "/api/google-drive/login/"))
}

func TestDocOpen_LoginFailure(t *testing.T) {
	backend := newTestBackend(t)
	backend.FailNext(http.MethodGet, "/api/google-drive/login/", http.StatusInternalServerError)
	env := writeConfig(t, backend, memberID, "")
	rt := env.runtime(t)
	useNavigator(rt, &redirect.RecordingNavigator{})

	err := runDocOpen(context.Background(), rt, teamID, 100)
	assert.Equal(t, cli.ExitRedirectFailed, cli.ExitCode(err))
	assert.Contains(t, env.errOut.String(), redirect.FailureMessage)

	busy, ferr := sessionflags.Redirecting(rt.flags)
	require.NoError(t, ferr)
	assert.False(t, busy)
}

func TestDocOpen_UnknownDocument(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, memberID, "")

	assert.ErrorContains(t, env.execute("doc", "open", "7", "999"), "document 999 not found in team 7")
}

func TestDocDelete_Yes(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, memberID, "")

	require.NoError(t, env.execute("doc", "delete", "7", "100", "--yes"))
	assert.Equal(t, []int{100}, backend.Deleted())
	assert.Contains(t, env.out.String(), `Deleted "Runbook"`)
}

func TestDocDelete_NotPermitted(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, memberID, "")

	err := env.execute("doc", "delete", "7", "101", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "you may not delete")
	assert.Empty(t, backend.Deleted())
	assert.Zero(t, backend.Calls(http.MethodDelete, "/api/documents/101/"))
}

func TestDocDelete_OwnerDeletesAnyDocument(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, ownerID, "")
	answer(t, "y")

	require.NoError(t, env.execute("doc", "delete", "7", "100"))
	assert.Equal(t, []int{100}, backend.Deleted())
}

func TestDocDelete_Declined(t *testing.T) {
	backend := newTestBackend(t)
	env := writeConfig(t, backend, memberID, "")
	answer(t, "n")

	require.NoError(t, env.execute("doc", "delete", "7", "100"))
	assert.Empty(t, backend.Deleted())
}

func TestDocDelete_RetryAfterFailure(t *testing.T) {
	backend := newTestBackend(t)
	backend.FailNext(http.MethodDelete, "/api/documents/100/", http.StatusInternalServerError)
	env := writeConfig(t, backend, memberID, "")
	answer(t, "y", "retry")

	require.NoError(t, env.execute("doc", "delete", "7", "100"))
	assert.Equal(t, []int{100}, backend.Deleted())
	assert.Equal(t, 2, backend.Calls(http.MethodDelete, "/api/documents/100/"))
	assert.Contains(t, env.errOut.String(), "Failed to delete document.")
}

func TestDocDelete_CancelAfterFailure(t *testing.T) {
	backend := newTestBackend(t)
	backend.FailNext(http.MethodDelete, "/api/documents/100/", http.StatusInternalServerError)
	env := writeConfig(t, backend, memberID, "")
	answer(t, "y", "cancel")

	err := env.execute("doc", "delete", "7", "100")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to delete document."))
	assert.Empty(t, backend.Deleted())
}

func TestDocDelete_FailureWithYes(t *testing.T) {
	backend := newTestBackend(t)
	backend.FailNext(http.MethodDelete, "/api/documents/100/", http.StatusBadGateway)
	env := writeConfig(t, backend, memberID, "")

	err := env.execute("doc", "delete", "7", "100", "--yes")
	require.Error(t, err)
	assert.Equal(t, cli.ExitError, cli.ExitCode(err))
	assert.False(t, errors.Is(err, &cli.RedirectFailedError{}))
	assert.Equal(t, 1, backend.Calls(http.MethodDelete, "/api/documents/100/"))
}
