package sessionflags

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"teamdocs/pkg/logging"
)

// DefaultStateDir is the default directory, relative to the user's home, for
// session flag files when XDG_STATE_HOME is unset.
const DefaultStateDir = ".local/state/teamdocs/sessions"

// fileData is the on-disk layout of one session's flags.
type fileData struct {
	Session   string            `json:"session"`
	OwnerPID  int               `json:"owner_pid,omitempty"`
	Values    map[string]string `json:"values"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// FileStore persists one session's flags in a JSON file.
//
// The storage directory is created with 0700 and files with 0600. Writes go
// through a temporary file and a rename so a crash never leaves a torn file.
type FileStore struct {
	mu      sync.Mutex
	dir     string
	session Session
}

// DefaultDir returns the session directory under XDG_STATE_HOME, falling
// back to ~/.local/state.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "teamdocs", "sessions"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DefaultStateDir), nil
}

// NewFileStore creates a store for session in dir.
func NewFileStore(dir string, session Session) (*FileStore, error) {
	if session.ID == "" {
		return nil, errors.New("session id is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{dir: dir, session: session}, nil
}

// Path returns the file backing this session.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, SanitizeID(s.session.ID)+".json")
}

func (s *FileStore) Set(key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	data.Values[key] = value
	if err := s.write(data); err != nil {
		return err
	}
	logging.Debug("SessionFlags", "Set %s for session %s", key, s.session.ID)
	return nil
}

func (s *FileStore) Get(key string) (string, bool, error) {
	if err := ValidateKey(key); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data.Values[key]
	return v, ok, nil
}

func (s *FileStore) Remove(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := data.Values[key]; !ok {
		return nil
	}
	delete(data.Values, key)

	if len(data.Values) == 0 {
		if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		logging.Debug("SessionFlags", "Removed %s, session %s is now empty", key, s.session.ID)
		return nil
	}
	if err := s.write(data); err != nil {
		return err
	}
	logging.Debug("SessionFlags", "Removed %s for session %s", key, s.session.ID)
	return nil
}

// load reads the session file. A missing file is an empty session.
func (s *FileStore) load() (*fileData, error) {
	empty := &fileData{
		Session:  s.session.ID,
		OwnerPID: s.session.OwnerPID,
		Values:   make(map[string]string),
	}

	raw, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return empty, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data fileData
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupt file must not wedge the redirect flow forever.
		logging.Warn("SessionFlags", "Discarding unreadable session file %s: %v", s.Path(), err)
		return empty, nil
	}
	if data.Values == nil {
		data.Values = make(map[string]string)
	}
	return &data, nil
}

func (s *FileStore) write(data *fileData) error {
	data.UpdatedAt = time.Now().UTC()
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set session file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// Prune removes session files whose owning shell has exited. alive reports
// whether a pid is still running; nil uses the operating system.
// It returns the number of files removed.
func Prune(dir string, alive func(pid int) bool) (int, error) {
	if alive == nil {
		alive = processAlive
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list session directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var data fileData
		if err := json.Unmarshal(raw, &data); err != nil {
			continue
		}
		if data.OwnerPID <= 0 || alive(data.OwnerPID) {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}

	if removed > 0 {
		logging.Debug("SessionFlags", "Pruned %d session files of closed shells", removed)
	}
	return removed, nil
}

func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return p.Signal(syscall.Signal(0)) == nil
}
