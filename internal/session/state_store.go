package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// State mirrors the durable JSON document: the two token keys, the persistent
// client identifier, and the serialized session snapshot under its own
// namespaced key.
type State struct {
	ClientID     string    `json:"client_identifier"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Profile      *Snapshot `json:"clipo.session,omitempty"`
}

// Snapshot is the persisted session snapshot (profile plus auth flag). The
// flag is written for inspection only; hydration always re-derives it from
// the presence of the user record.
type Snapshot struct {
	User          *User `json:"user"`
	Authenticated bool  `json:"is_authenticated"`
}

// StateStore abstracts persistence for session state.
type StateStore interface {
	Load() (State, error)
	Save(State) error
}

// FileStateStore writes session state to a JSON file on disk. A sibling lock
// file serializes access across concurrent clipo processes.
type FileStateStore struct {
	path string
	lock *flock.Flock
}

// NewFileStateStore builds a FileStateStore rooted at the provided path.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Load reads session state from disk. A missing file resolves to an empty
// state, and so does an unreadable document: corrupt state must never keep
// the client from starting, it just means logged out.
func (s *FileStateStore) Load() (State, error) {
	if err := s.ensureLockDir(); err != nil {
		return State{}, err
	}
	if err := s.lock.RLock(); err != nil {
		return State{}, fmt.Errorf("lock session state: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("read session state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, nil
	}
	return state, nil
}

// Save persists session state to disk with restricted permissions.
func (s *FileStateStore) Save(state State) error {
	if err := s.ensureLockDir(); err != nil {
		return err
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock session state: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session state: %w", err)
	}
	return nil
}

func (s *FileStateStore) ensureLockDir() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("ensure session state directory: %w", err)
	}
	return nil
}
