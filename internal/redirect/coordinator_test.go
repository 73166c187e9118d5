package redirect

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdocs/internal/apiclient"
	"teamdocs/internal/notify"
	"teamdocs/internal/sessionflags"
	"teamdocs/internal/testing/mock"
)

type fakeFetcher struct {
	calls atomic.Int32
	url   string
	err   error
	block chan struct{}
	next  string
}

func (f *fakeFetcher) DriveLoginURL(ctx context.Context, next string) (string, error) {
	f.calls.Add(1)
	f.next = next
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.url, f.err
}

func newCoordinator(fetcher AuthURLFetcher) (*Coordinator, *sessionflags.MemoryStore, *RecordingNavigator, *notify.Recorder) {
	flags := sessionflags.NewMemoryStore()
	nav := &RecordingNavigator{}
	rec := &notify.Recorder{}
	return NewCoordinator(flags, fetcher, nav, rec), flags, nav, rec
}

func TestBeginExternalLogin_Success(t *testing.T) {
	fetcher := &fakeFetcher{url: "https://provider.example/auth?x=1"}
	c, flags, nav, rec := newCoordinator(fetcher)

	require.NoError(t, c.BeginExternalLogin(context.Background(), "/teams/1"))

	assert.Equal(t, []string{"https://provider.example/auth?x=1"}, nav.URLs())
	assert.Equal(t, "/teams/1", fetcher.next)
	assert.Empty(t, rec.All())

	busy, err := sessionflags.Redirecting(flags)
	require.NoError(t, err)
	assert.True(t, busy, "flag stays set until the callback")

	path, ok, err := flags.Get(sessionflags.KeyReturnPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/teams/1", path)
}

func TestBeginExternalLogin_SuppressedWhenFlagSet(t *testing.T) {
	fetcher := &fakeFetcher{url: "https://provider.example/auth"}
	c, flags, nav, _ := newCoordinator(fetcher)
	require.NoError(t, flags.Set(sessionflags.KeyRedirecting, sessionflags.RedirectingValue))

	err := c.BeginExternalLogin(context.Background(), "/teams/1")
	assert.ErrorIs(t, err, ErrRedirectInProgress)
	assert.Zero(t, fetcher.calls.Load())
	assert.Empty(t, nav.URLs())

	_, ok, err := flags.Get(sessionflags.KeyReturnPath)
	require.NoError(t, err)
	assert.False(t, ok, "suppressed call must not overwrite the return path")
}

func TestBeginExternalLogin_FailureClearsFlagAndNotifies(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("500 Internal Server Error")}
	c, flags, nav, rec := newCoordinator(fetcher)

	err := c.BeginExternalLogin(context.Background(), "/teams/1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	busy, ferr := sessionflags.Redirecting(flags)
	require.NoError(t, ferr)
	assert.False(t, busy)
	assert.Empty(t, nav.URLs())
	assert.Equal(t, []string{FailureMessage}, rec.Errors())
}

func TestBeginExternalLogin_EmptyURLIsFailure(t *testing.T) {
	c, flags, nav, rec := newCoordinator(&fakeFetcher{})

	require.Error(t, c.BeginExternalLogin(context.Background(), ""))
	busy, _ := sessionflags.Redirecting(flags)
	assert.False(t, busy)
	assert.Empty(t, nav.URLs())
	assert.Len(t, rec.Errors(), 1)
}

func TestBeginExternalLogin_NavigationFailure(t *testing.T) {
	flags := sessionflags.NewMemoryStore()
	nav := &RecordingNavigator{Err: errors.New("no display")}
	rec := &notify.Recorder{}
	c := NewCoordinator(flags, &fakeFetcher{url: "https://provider.example/auth"}, nav, rec)

	require.Error(t, c.BeginExternalLogin(context.Background(), ""))
	busy, _ := sessionflags.Redirecting(flags)
	assert.False(t, busy)
	assert.Equal(t, []string{FailureMessage}, rec.Errors())
}

func TestBeginExternalLogin_ConcurrentCallersMakeOneRequest(t *testing.T) {
	fetcher := &fakeFetcher{url: "https://provider.example/auth", block: make(chan struct{})}
	c, _, nav, _ := newCoordinator(fetcher)

	var wg sync.WaitGroup
	var suppressed atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if errors.Is(c.BeginExternalLogin(context.Background(), "/x"), ErrRedirectInProgress) {
				suppressed.Add(1)
			}
		}()
	}

	require.Eventually(t, func() bool { return suppressed.Load() == 7 }, defaultWait, tick)
	close(fetcher.block)
	wg.Wait()

	assert.Equal(t, int32(1), fetcher.calls.Load())
	assert.Len(t, nav.URLs(), 1)
}

func TestReset_AllowsNewRedirect(t *testing.T) {
	fetcher := &fakeFetcher{url: "https://provider.example/auth"}
	c, _, nav, _ := newCoordinator(fetcher)

	require.NoError(t, c.BeginExternalLogin(context.Background(), ""))
	assert.ErrorIs(t, c.BeginExternalLogin(context.Background(), ""), ErrRedirectInProgress)

	require.NoError(t, c.Reset())
	inProgress, err := c.InProgress()
	require.NoError(t, err)
	assert.False(t, inProgress)

	require.NoError(t, c.BeginExternalLogin(context.Background(), ""))
	assert.Len(t, nav.URLs(), 2)
}

func TestBeginExternalLogin_AgainstBackend(t *testing.T) {
	backend := mock.NewBackend()
	defer backend.Close()
	client, err := apiclient.New(backend.URL())
	require.NoError(t, err)

	c, _, nav, _ := newCoordinator(client)
	require.NoError(t, c.BeginExternalLogin(context.Background(), "/view/documents"))

	urls := nav.URLs()
	require.Len(t, urls, 1)
	assert.True(t, strings.HasPrefix(urls[0], mock.FakeProviderAuthURL))

	backend.FailNext(http.MethodGet, "/api/google-drive/login/", http.StatusInternalServerError)
	require.NoError(t, c.Reset())
	err = c.BeginExternalLogin(context.Background(), "/view/documents")
	assert.True(t, apiclient.IsStatus(err, http.StatusInternalServerError))
}
