// ABOUTME: OS keyring-backed token store
// ABOUTME: Keeps credential values out of plain files where a keyring exists

package tokenstore

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService names the credential group in the OS keyring
const keyringService = "newsterm"

// KeyringStore persists values in the operating system keyring.
// Construction probes the keyring so callers can fall back to the
// file store on headless machines.
type KeyringStore struct{}

// NewKeyringStore returns a keyring-backed store, or an error when no
// usable keyring is available.
func NewKeyringStore() (*KeyringStore, error) {
	// Probe with a throwaway entry; zalando/go-keyring has no capability check
	const probe = "keyring-probe"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return nil, fmt.Errorf("keyring unavailable: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)
	return &KeyringStore{}, nil
}

// Get implements Store
func (s *KeyringStore) Get(key Key) (string, bool) {
	v, err := keyring.Get(keyringService, string(key))
	if err != nil {
		return "", false
	}
	return v, true
}

// Set implements Store
func (s *KeyringStore) Set(key Key, value string) error {
	return keyring.Set(keyringService, string(key), value)
}

// Remove implements Store
func (s *KeyringStore) Remove(key Key) error {
	err := keyring.Delete(keyringService, string(key))
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// Open returns the preferred store for the given settings: the OS keyring
// when requested and available, otherwise the token file under configDir.
func Open(configDir string, useKeyring bool) Store {
	if useKeyring {
		if ks, err := NewKeyringStore(); err == nil {
			return ks
		}
	}
	return NewFileStore(configDir)
}
