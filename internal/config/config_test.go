// ABOUTME: Tests for environment-based configuration
// ABOUTME: Covers defaults, overrides, and the XDG config directory

package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NEWSTERM_API_URL", "")
	t.Setenv("NEWSTERM_TIMEOUT", "")
	t.Setenv("NEWSTERM_CONFIG_DIR", "")
	t.Setenv("NEWSTERM_KEYRING", "")
	t.Setenv("NEWSTERM_DEBUG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("unexpected API URL: %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.RequestTimeout)
	}
	if cfg.ConfigDir == "" {
		t.Error("expected a config dir default")
	}
	if cfg.UseKeyring || cfg.Debug {
		t.Error("keyring and debug default off")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("NEWSTERM_API_URL", "https://news.example.com")
	t.Setenv("NEWSTERM_TIMEOUT", "5s")
	t.Setenv("NEWSTERM_CONFIG_DIR", "/tmp/newsterm-test")
	t.Setenv("NEWSTERM_KEYRING", "true")
	t.Setenv("NEWSTERM_DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "https://news.example.com" {
		t.Errorf("unexpected API URL: %s", cfg.APIURL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("unexpected timeout: %s", cfg.RequestTimeout)
	}
	if cfg.ConfigDir != "/tmp/newsterm-test" {
		t.Errorf("unexpected config dir: %s", cfg.ConfigDir)
	}
	if !cfg.UseKeyring || !cfg.Debug {
		t.Error("expected keyring and debug enabled")
	}
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv("NEWSTERM_TIMEOUT", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Error("expected error for invalid timeout")
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "newsterm") {
		t.Errorf("unexpected dir: %s", got)
	}
}

func TestDefaultConfigDir_Home(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")
	if got := DefaultConfigDir(); got != filepath.Join("/home/tester", ".config", "newsterm") {
		t.Errorf("unexpected dir: %s", got)
	}
}
