package sessionflags

import (
	"errors"
	"fmt"
)

const (
	// KeyRedirecting marks a redirect to the provider as in progress.
	KeyRedirecting = "redirectingToGoogleDrive"

	// KeyReturnPath holds the path to return to after the callback.
	KeyReturnPath = "googleDriveRedirect"

	// RedirectingValue is the value stored under KeyRedirecting.
	RedirectingValue = "true"
)

// ErrUnknownKey is returned for any key other than the two coordination keys.
var ErrUnknownKey = errors.New("unknown session flag key")

// Store is a session-scoped key/value store that survives process restarts
// within one terminal session.
type Store interface {
	// Set stores value under key.
	Set(key, value string) error

	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// ValidateKey returns ErrUnknownKey unless key is one of the coordination keys.
func ValidateKey(key string) error {
	switch key {
	case KeyRedirecting, KeyReturnPath:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
}

// Redirecting reports whether the in-progress flag is set.
func Redirecting(s Store) (bool, error) {
	v, ok, err := s.Get(KeyRedirecting)
	if err != nil {
		return false, err
	}
	return ok && v == RedirectingValue, nil
}

// ConsumeReturnPath reads and removes the stored return path. fallback is
// returned when none was stored.
func ConsumeReturnPath(s Store, fallback string) (string, error) {
	v, ok, err := s.Get(KeyReturnPath)
	if err != nil {
		return fallback, err
	}
	if err := s.Remove(KeyReturnPath); err != nil {
		return fallback, err
	}
	if !ok || v == "" {
		return fallback, nil
	}
	return v, nil
}
