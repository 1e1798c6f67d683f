// ABOUTME: Tests for the debug logger
// ABOUTME: Covers disabled mode, file output, and credential redaction

package debuglog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_EmptyDirDisables(t *testing.T) {
	if err := Init(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer Close()

	// Logging without a file must not panic
	Log("dropped %d", 1)
}

func TestLog_WritesToFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	Log("hello %s", "world")
	Close()

	data, err := os.ReadFile(filepath.Join(dir, "debug.log"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(data), "hello world") {
		t.Errorf("unexpected log content: %s", data)
	}
}

func TestError_NilIsNoop(t *testing.T) {
	dir := t.TempDir()
	Init(dir)
	Error("context", nil)
	Close()

	data, _ := os.ReadFile(filepath.Join(dir, "debug.log"))
	if strings.Contains(string(data), "ERROR") {
		t.Error("nil error must not be logged")
	}
}

func TestRedact(t *testing.T) {
	if got := Redact("short"); got != "***" {
		t.Errorf("expected ***, got %s", got)
	}
	got := Redact("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	if strings.Contains(got, "payload") {
		t.Errorf("expected middle hidden, got %s", got)
	}
	if !strings.HasPrefix(got, "eyJh") || !strings.HasSuffix(got, ".sig") {
		t.Errorf("expected edges kept, got %s", got)
	}
}
