// ABOUTME: Durable key-value persistence for session credentials
// ABOUTME: File-backed JSON store in the XDG config directory

package tokenstore

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Key identifies a stored credential slot
type Key string

const (
	KeyAccessToken  Key = "access_token"
	KeyRefreshToken Key = "refresh_token"
	KeyLoginToken   Key = "login_token"
	KeyRedirectPath Key = "redirect_path"
)

// Store is the persistence contract for session state. Implementations do no
// validation; callers are responsible for interpreting values.
type Store interface {
	// Get returns the stored value and whether the key is present
	Get(key Key) (string, bool)
	// Set stores a value under the key
	Set(key Key, value string) error
	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(key Key) error
}

// FileStore keeps values in a JSON file that survives process restarts
type FileStore struct {
	dir    string
	values map[Key]string
	loaded bool
}

// NewFileStore creates a store rooted at the given config directory
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the backing file location, for change watching
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, "tokens.json")
}

// load reads the backing file once. Invalid or missing content starts fresh.
func (s *FileStore) load() {
	if s.loaded {
		return
	}
	s.loaded = true
	s.values = map[Key]string{}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		return
	}
	var stored map[Key]string
	if err := json.Unmarshal(data, &stored); err != nil {
		return
	}
	s.values = stored
}

// Reload discards the in-memory view and re-reads from disk.
// Used when another process of the same user changed the file.
func (s *FileStore) Reload() {
	s.loaded = false
	s.load()
}

func (s *FileStore) flush() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(), data, 0600)
}

// Get implements Store
func (s *FileStore) Get(key Key) (string, bool) {
	s.load()
	v, ok := s.values[key]
	return v, ok
}

// Set implements Store
func (s *FileStore) Set(key Key, value string) error {
	s.load()
	s.values[key] = value
	return s.flush()
}

// Remove implements Store
func (s *FileStore) Remove(key Key) error {
	s.load()
	if _, ok := s.values[key]; !ok {
		return nil
	}
	delete(s.values, key)
	return s.flush()
}
