package redirect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"teamdocs/internal/notify"
	"teamdocs/internal/sessionflags"
	"teamdocs/pkg/logging"
)

// FailureMessage is shown to the user when the hand-off fails.
const FailureMessage = "Failed to connect to Google Drive. Please try again."

// ErrRedirectInProgress is returned when a redirect is already under way in
// this session. No request is made.
var ErrRedirectInProgress = errors.New("redirect to Google Drive already in progress")

// AuthURLFetcher obtains the provider authorization URL from the backend.
type AuthURLFetcher interface {
	DriveLoginURL(ctx context.Context, next string) (string, error)
}

// Navigator sends the user to url.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Coordinator performs the single redirect hand-off.
type Coordinator struct {
	mu       sync.Mutex
	flags    sessionflags.Store
	fetcher  AuthURLFetcher
	nav      Navigator
	notifier notify.Notifier
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(flags sessionflags.Store, fetcher AuthURLFetcher, nav Navigator, notifier notify.Notifier) *Coordinator {
	return &Coordinator{
		flags:    flags,
		fetcher:  fetcher,
		nav:      nav,
		notifier: notifier,
	}
}

// BeginExternalLogin starts the redirect unless one is already in progress.
// returnPath, when non-empty, is stored for the callback to return to.
func (c *Coordinator) BeginExternalLogin(ctx context.Context, returnPath string) error {
	if err := c.claim(returnPath); err != nil {
		if errors.Is(err, ErrRedirectInProgress) {
			logging.Debug("Redirect", "Redirect already in progress, suppressing")
			return err
		}
		c.fail(err)
		return err
	}

	authURL, err := c.fetcher.DriveLoginURL(ctx, returnPath)
	if err != nil {
		err = fmt.Errorf("failed to obtain authorization URL: %w", err)
		c.fail(err)
		return err
	}
	if authURL == "" {
		err = errors.New("backend returned an empty authorization URL")
		c.fail(err)
		return err
	}

	logging.Info("Redirect", "Redirecting to Google Drive for authorization")
	if err := c.nav.Navigate(ctx, authURL); err != nil {
		err = fmt.Errorf("failed to navigate to authorization URL: %w", err)
		c.fail(err)
		return err
	}
	return nil
}

// Reset clears the in-progress flag so a new redirect may start.
func (c *Coordinator) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags.Remove(sessionflags.KeyRedirecting)
}

// InProgress reports whether the in-progress flag is set.
func (c *Coordinator) InProgress() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sessionflags.Redirecting(c.flags)
}

// claim checks and sets the in-progress flag under the lock.
func (c *Coordinator) claim(returnPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	busy, err := sessionflags.Redirecting(c.flags)
	if err != nil {
		return fmt.Errorf("failed to read session flags: %w", err)
	}
	if busy {
		return ErrRedirectInProgress
	}
	if err := c.flags.Set(sessionflags.KeyRedirecting, sessionflags.RedirectingValue); err != nil {
		return fmt.Errorf("failed to set session flag: %w", err)
	}
	if returnPath != "" {
		if err := c.flags.Set(sessionflags.KeyReturnPath, returnPath); err != nil {
			return fmt.Errorf("failed to store return path: %w", err)
		}
	}
	return nil
}

func (c *Coordinator) fail(cause error) {
	logging.Error("Redirect", cause, "Google Drive redirect failed")
	c.mu.Lock()
	if err := c.flags.Remove(sessionflags.KeyRedirecting); err != nil {
		logging.Warn("Redirect", "Failed to clear redirect flag: %v", err)
	}
	c.mu.Unlock()
	c.notifier.Error(FailureMessage)
}
