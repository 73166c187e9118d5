package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamdocs/internal/appstate"
	"teamdocs/internal/model"
	"teamdocs/internal/redirect"
)

type recordingLogin struct {
	paths []string
	err   error
}

func (r *recordingLogin) BeginExternalLogin(_ context.Context, returnPath string) error {
	r.paths = append(r.paths, returnPath)
	return r.err
}

func TestOpenDocument_NotConnectedRedirects(t *testing.T) {
	store := appstate.NewStore(appstate.WithStatus(appstate.StatusDisconnected))
	login := &recordingLogin{}
	nav := &redirect.RecordingNavigator{}
	o := NewOpener(store, login, nav, "http://localhost:3000")

	err := o.OpenDocument(context.Background(), &model.Document{ID: 9}, "/teams/1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Equal(t, []string{"/teams/1"}, login.paths)
	assert.Empty(t, nav.URLs())
}

func TestOpenDocument_RedirectFailureIsWrapped(t *testing.T) {
	store := appstate.NewStore(appstate.WithStatus(appstate.StatusDisconnected))
	cause := errors.New("backend down")
	o := NewOpener(store, &recordingLogin{err: cause}, &redirect.RecordingNavigator{}, "http://localhost:3000")

	err := o.OpenDocument(context.Background(), &model.Document{ID: 9}, "/teams/1")
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, err, cause)
}

func TestOpenDocument_Connected(t *testing.T) {
	store := appstate.NewStore(appstate.WithStatus(appstate.StatusConnected))
	login := &recordingLogin{}
	nav := &redirect.RecordingNavigator{}
	o := NewOpener(store, login, nav, "http://localhost:3000/")

	require.NoError(t, o.OpenDocument(context.Background(), &model.Document{ID: 9}, "/teams/1"))
	assert.Equal(t, []string{"http://localhost:3000/document/9"}, nav.URLs())
	assert.Empty(t, login.paths)
}

func TestOpenDocument_NilDocument(t *testing.T) {
	o := NewOpener(appstate.NewStore(), &recordingLogin{}, &redirect.RecordingNavigator{}, "http://localhost:3000")
	assert.Error(t, o.OpenDocument(context.Background(), nil, "/"))
}
