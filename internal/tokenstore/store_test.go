// ABOUTME: Tests for the file-backed token store
// ABOUTME: Covers persistence, removal, reload, and file permissions

package tokenstore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileStore_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	if err := store.Set(KeyAccessToken, "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := store.Get(KeyAccessToken); !ok || got != "tok" {
		t.Errorf("expected tok, got %q (present=%v)", got, ok)
	}

	// A fresh store over the same directory sees the value
	reopened := NewFileStore(dir)
	if got, ok := reopened.Get(KeyAccessToken); !ok || got != "tok" {
		t.Errorf("expected persisted tok, got %q (present=%v)", got, ok)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("expected absent key")
	}
}

func TestFileStore_RemoveIdempotent(t *testing.T) {
	store := NewFileStore(t.TempDir())
	store.Set(KeyAccessToken, "tok")

	if err := store.Remove(KeyAccessToken); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("expected key removed")
	}
	if err := store.Remove(KeyAccessToken); err != nil {
		t.Errorf("removing an absent key must be a no-op, got %v", err)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	store := NewFileStore(t.TempDir())
	store.Set(KeyAccessToken, "old")
	store.Set(KeyAccessToken, "new")

	if got, _ := store.Get(KeyAccessToken); got != "new" {
		t.Errorf("expected new, got %q", got)
	}
}

func TestFileStore_Reload(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	store.Set(KeyAccessToken, "tok")

	// Another process removes the token
	other := NewFileStore(dir)
	other.Remove(KeyAccessToken)

	if _, ok := store.Get(KeyAccessToken); !ok {
		t.Fatal("stale read should still see the cached value")
	}
	store.Reload()
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("expected reload to pick up the removal")
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "tokens.json"), []byte("{invalid"), 0o600)

	store := NewFileStore(dir)
	if _, ok := store.Get(KeyAccessToken); ok {
		t.Error("corrupt file must read as empty")
	}
	// Writing works and replaces the corrupt content
	if err := store.Set(KeyAccessToken, "tok"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFileStore_Permissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}
	dir := t.TempDir()
	store := NewFileStore(dir)
	store.Set(KeyAccessToken, "tok")

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("expected 0600 token file, got %o", perm)
	}
}

func TestOpen_FallsBackToFile(t *testing.T) {
	// With the keyring disabled, Open always returns the file store
	store := Open(t.TempDir(), false)
	if _, ok := store.(*FileStore); !ok {
		t.Errorf("expected *FileStore, got %T", store)
	}
}
