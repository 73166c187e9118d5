package appstate

import (
	"fmt"
	"sync"

	"teamdocs/pkg/logging"
)

// ConnectionStatus is whether Google Drive is connected for the current user.
type ConnectionStatus int

const (
	// StatusUnknown means the status has not been checked yet.
	StatusUnknown ConnectionStatus = iota

	// StatusDisconnected means the provider has no session for the user.
	StatusDisconnected

	// StatusConnected means the OAuth callback completed successfully.
	StatusConnected
)

// String returns the string representation of the status.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Listener is notified with the new status after every change.
type Listener func(ConnectionStatus)

// Backend persists the connection status between invocations.
type Backend interface {
	Load() (ConnectionStatus, error)
	Save(ConnectionStatus) error
}

// Store is the single shared container for the connection flag. Components
// receive it explicitly and subscribe to changes; nothing reads the flag
// from a global.
type Store struct {
	mu        sync.RWMutex
	status    ConnectionStatus
	listeners map[int]Listener
	nextID    int
	backend   Backend
}

// Option configures a Store.
type Option func(*Store)

// WithBackend persists the status through b.
func WithBackend(b Backend) Option {
	return func(s *Store) {
		s.backend = b
	}
}

// WithStatus sets the initial status. Intended for tests.
func WithStatus(status ConnectionStatus) Option {
	return func(s *Store) {
		s.status = status
	}
}

// NewStore creates a store in StatusUnknown.
func NewStore(opts ...Option) *Store {
	s := &Store{listeners: make(map[int]Listener)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Status returns the current status.
func (s *Store) Status() ConnectionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Connected reports whether the status is StatusConnected.
func (s *Store) Connected() bool {
	return s.Status() == StatusConnected
}

// SetConnected records the outcome of the OAuth callback. The status is
// updated in memory even when persisting it fails.
func (s *Store) SetConnected(connected bool) error {
	status := StatusDisconnected
	if connected {
		status = StatusConnected
	}
	s.apply(status)

	if s.backend != nil {
		if err := s.backend.Save(status); err != nil {
			logging.Error("AppState", err, "Failed to persist connection status")
			return fmt.Errorf("failed to persist connection status: %w", err)
		}
	}
	return nil
}

// Reload reads the persisted status, if any, and applies it. A missing
// record resolves Unknown to Disconnected.
func (s *Store) Reload() error {
	if s.backend == nil {
		if s.Status() == StatusUnknown {
			s.apply(StatusDisconnected)
		}
		return nil
	}
	status, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("failed to load connection status: %w", err)
	}
	s.apply(status)
	return nil
}

// Subscribe registers fn for status changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// apply sets the status and notifies listeners outside the lock.
func (s *Store) apply(status ConnectionStatus) {
	s.mu.Lock()
	if s.status == status {
		s.mu.Unlock()
		return
	}
	prev := s.status
	s.status = status
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	logging.Debug("AppState", "Connection status %s -> %s", prev, status)
	for _, l := range listeners {
		l(status)
	}
}
