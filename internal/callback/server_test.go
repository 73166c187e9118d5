package callback

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdocs/internal/appstate"
	"teamdocs/internal/sessionflags"
)

func setup(t *testing.T, opts ...Option) (*Server, *httptest.Server, *appstate.Store, *sessionflags.MemoryStore) {
	t.Helper()
	store := appstate.NewStore(appstate.WithStatus(appstate.StatusDisconnected))
	flags := sessionflags.NewMemoryStore()
	s := NewServer("127.0.0.1:0", store, flags, opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts, store, flags
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestCallback_Success(t *testing.T) {
	s, ts, store, flags := setup(t, WithFrontendURL("http://localhost:3000"))
	require.NoError(t, flags.Set(sessionflags.KeyRedirecting, sessionflags.RedirectingValue))
	require.NoError(t, flags.Set(sessionflags.KeyReturnPath, "/teams/1"))

	resp, body := get(t, ts.URL+Path+"?drive_auth=success")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.Contains(t, body, "Google Drive connected")
	assert.Contains(t, body, "http://localhost:3000/teams/1")

	assert.True(t, store.Connected())
	_, ok, _ := flags.Get(sessionflags.KeyRedirecting)
	assert.False(t, ok)
	_, ok, _ = flags.Get(sessionflags.KeyReturnPath)
	assert.False(t, ok)

	result, err := s.WaitForResult(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "/teams/1", result.ReturnPath)
	assert.NotEmpty(t, result.RequestID)
}

func TestCallback_SuccessDefaultsReturnPath(t *testing.T) {
	s, ts, _, _ := setup(t)

	_, body := get(t, ts.URL+Path+"?drive_auth=success")
	assert.Contains(t, body, DefaultReturnPath)

	result, err := s.WaitForResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultReturnPath, result.ReturnPath)
}

func TestCallback_FailureLeavesFlags(t *testing.T) {
	s, ts, store, flags := setup(t)
	require.NoError(t, flags.Set(sessionflags.KeyRedirecting, sessionflags.RedirectingValue))
	require.NoError(t, flags.Set(sessionflags.KeyReturnPath, "/teams/1"))

	resp, body := get(t, ts.URL+Path+"?drive_auth=denied")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, FailureMessage)
	assert.Contains(t, body, "denied")

	assert.False(t, store.Connected())
	busy, err := sessionflags.Redirecting(flags)
	require.NoError(t, err)
	assert.True(t, busy)
	path, ok, _ := flags.Get(sessionflags.KeyReturnPath)
	assert.True(t, ok)
	assert.Equal(t, "/teams/1", path)

	result, err := s.WaitForResult(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "denied", result.Reason)
}

func TestCallback_EscapesReason(t *testing.T) {
	_, ts, _, _ := setup(t)
	_, body := get(t, ts.URL+Path+"?error=%3Cscript%3Ealert(1)%3C%2Fscript%3E")
	assert.NotContains(t, body, "<script>")
}

func TestCallback_SecondRequestRejected(t *testing.T) {
	_, ts, store, _ := setup(t)

	resp, _ := get(t, ts.URL+Path+"?drive_auth=denied")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := get(t, ts.URL+Path+"?drive_auth=success")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, ErrAlreadyHandled.Error())
	assert.False(t, store.Connected())
}

func TestCallback_MethodNotAllowed(t *testing.T) {
	_, ts, _, _ := setup(t)
	resp, err := http.Post(ts.URL+Path, "text/plain", strings.NewReader(""))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_StartAndWait(t *testing.T) {
	store := appstate.NewStore()
	flags := sessionflags.NewMemoryStore()
	s := NewServer("127.0.0.1:0", store, flags)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	callbackURL, err := s.Start(ctx)
	require.NoError(t, err)
	defer s.Stop()
	assert.True(t, strings.HasSuffix(callbackURL, Path))

	go func() {
		resp, err := http.Get(callbackURL + "?drive_auth=success")
		if err == nil {
			resp.Body.Close()
		}
	}()

	result, err := s.WaitForResult(ctx)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, store.Connected())
}

func TestNewServer_DefaultAddr(t *testing.T) {
	s := NewServer("", appstate.NewStore(), sessionflags.NewMemoryStore())
	assert.Equal(t, DefaultAddr, s.addr)
}
