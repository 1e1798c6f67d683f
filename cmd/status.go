// ABOUTME: Status command for the newsterm CLI
// ABOUTME: Shows who is logged in and when the session expires

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"newsterm/internal/session"
	"newsterm/internal/tokenstore"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	Long: `Display the logged-in account and token expiry.

Exit codes:
  0 - Logged in
  1 - Not logged in
  2 - Error`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runStatus(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusOutput is the JSON shape of the status report
type statusOutput struct {
	LoggedIn bool   `json:"loggedIn"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Expires  string `json:"expires,omitempty"`
}

// runStatus reports the stored session and returns exit code
func runStatus(w io.Writer) int {
	_, _, mgr, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	mgr.Restore()

	snap := mgr.Snapshot()
	out := statusOutput{LoggedIn: snap.IsAuthenticated}
	if snap.IsAuthenticated && snap.User != nil {
		out.Username = snap.User.Username
		out.Email = snap.User.Email
		if token, ok := mgr.Store().Get(tokenstore.KeyAccessToken); ok {
			if claims, err := session.ParseToken(token); err == nil {
				out.Expires = claims.ExpiresAt().UTC().Format(time.RFC3339)
			}
		}
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(w, string(data))
	} else if out.LoggedIn {
		fmt.Fprintf(w, "Logged in as %s", out.Username)
		if out.Email != "" {
			fmt.Fprintf(w, " <%s>", out.Email)
		}
		fmt.Fprintln(w)
		if out.Expires != "" {
			fmt.Fprintf(w, "Session expires %s\n", out.Expires)
		}
	} else {
		fmt.Fprintln(w, "Not logged in.")
	}

	if !out.LoggedIn {
		return 1
	}
	return 0
}
