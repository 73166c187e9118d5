package workspace

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"teamdocs/internal/appstate"
	"teamdocs/internal/model"
	"teamdocs/internal/redirect"
	"teamdocs/pkg/logging"
)

// ErrNotConnected is returned when a document is opened before Drive is
// connected. A redirect has been attempted.
var ErrNotConnected = errors.New("google drive is not connected")

// LoginStarter begins the external login hand-off.
type LoginStarter interface {
	BeginExternalLogin(ctx context.Context, returnPath string) error
}

// Opener opens documents in the frontend viewer.
type Opener struct {
	store       *appstate.Store
	login       LoginStarter
	nav         redirect.Navigator
	frontendURL string
}

// NewOpener creates an Opener.
func NewOpener(store *appstate.Store, login LoginStarter, nav redirect.Navigator, frontendURL string) *Opener {
	return &Opener{store: store, login: login, nav: nav, frontendURL: frontendURL}
}

// DocumentURL returns the viewer URL for a document.
func DocumentURL(frontendURL string, documentID int) (string, error) {
	return url.JoinPath(frontendURL, "document", strconv.Itoa(documentID))
}

// OpenDocument navigates to the viewer for doc when Drive is connected.
// Otherwise it starts the external login with currentPath as the return path
// and returns an error wrapping ErrNotConnected.
func (o *Opener) OpenDocument(ctx context.Context, doc *model.Document, currentPath string) error {
	if doc == nil {
		return errors.New("no document selected")
	}

	if !o.store.Connected() {
		logging.Info("Workspace", "Document %d requested before Drive connection, redirecting", doc.ID)
		if err := o.login.BeginExternalLogin(ctx, currentPath); err != nil {
			return fmt.Errorf("%w: %w", ErrNotConnected, err)
		}
		return ErrNotConnected
	}

	target, err := DocumentURL(o.frontendURL, doc.ID)
	if err != nil {
		return fmt.Errorf("invalid frontend URL: %w", err)
	}
	return o.nav.Navigate(ctx, target)
}
