// ABOUTME: Browse command launching the interactive TUI
// ABOUTME: Wires the token file watcher and optional debug log

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"newsterm/internal/tokenstore"
	"newsterm/internal/tui"
	"newsterm/internal/tui/debuglog"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive news browser",
	Long:  `Open the full-screen terminal UI: login, two-factor verification, and news browsing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

// runBrowse starts the TUI. Session restore happens inside the program so
// the first frame can show the loading state.
func runBrowse() error {
	cfg, api, mgr, err := newSession()
	if err != nil {
		return err
	}

	if cfg.Debug {
		if err := debuglog.Init(cfg.ConfigDir); err == nil {
			defer debuglog.Close()
		}
	}

	var watcher *tokenstore.Watcher
	if fs, ok := mgr.Store().(*tokenstore.FileStore); ok {
		watcher, err = tokenstore.NewWatcher(fs)
		if err != nil {
			debuglog.Error("token watcher", err)
			watcher = nil
		} else {
			defer watcher.Close()
		}
	}

	if err := tui.Run(cfg, api, mgr, watcher); err != nil {
		return fmt.Errorf("failed to run UI: %w", err)
	}
	return nil
}
