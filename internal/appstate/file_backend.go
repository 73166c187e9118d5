package appstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"teamdocs/pkg/logging"
)

// stateFile is the on-disk layout.
type stateFile struct {
	DriveConnected bool      `json:"drive_connected"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FileBackend stores the connection status in a JSON file so that the
// callback listener and later commands agree on it.
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend for path. The parent directory is created
// with 0700.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &FileBackend{path: path}, nil
}

// Path returns the state file path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load returns StatusDisconnected when no state has been written yet.
func (b *FileBackend) Load() (ConnectionStatus, error) {
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return StatusDisconnected, nil
	}
	if err != nil {
		return StatusUnknown, err
	}
	var f stateFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return StatusUnknown, fmt.Errorf("invalid state file %s: %w", b.path, err)
	}
	if f.DriveConnected {
		return StatusConnected, nil
	}
	return StatusDisconnected, nil
}

func (b *FileBackend) Save(status ConnectionStatus) error {
	raw, err := json.MarshalIndent(stateFile{
		DriveConnected: status == StatusConnected,
		UpdatedAt:      time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".state-*")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set state file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Watch reloads store whenever another process rewrites the state file. It
// blocks until ctx is done.
func (b *FileBackend) Watch(ctx context.Context, store *Store) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create state watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: the file is replaced by rename, which drops
	// watches placed on the file itself.
	if err := watcher.Add(filepath.Dir(b.path)); err != nil {
		return fmt.Errorf("failed to watch state directory: %w", err)
	}
	logging.Debug("AppState", "Watching %s for connection changes", b.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(b.path) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if err := store.Reload(); err != nil {
				logging.Warn("AppState", "Ignoring unreadable state change: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error("AppState", err, "State watcher error")
		}
	}
}
