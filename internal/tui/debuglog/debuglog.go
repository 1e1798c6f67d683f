// ABOUTME: File-backed debug logger for the TUI
// ABOUTME: Keeps diagnostics off the terminal and credentials out of the log

package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init opens debug.log under the config directory. An empty directory
// disables logging; so does any open failure, reported to the caller.
func Init(configDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if configDir == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	logFile = f
	return nil
}

// Close stops logging and releases the file
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Log writes one timestamped line. A no-op unless Init succeeded.
func Log(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if logFile == nil {
		return
	}
	fmt.Fprintf(logFile, "%s %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
}

// Error logs a failure with its context
func Error(context string, err error) {
	if err == nil {
		return
	}
	Log("ERROR %s: %v", context, err)
}

// Redact shortens a credential value for logging. Tokens never appear in
// full in the debug log.
func Redact(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
