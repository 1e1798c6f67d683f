// ABOUTME: Logout command for the newsterm CLI
// ABOUTME: Clears stored tokens and ends the session

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and discard stored tokens",
	Long:  `Remove all stored session tokens. Safe to run when already logged out.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitCode := runLogout(os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

// runLogout clears the session and returns exit code
func runLogout(w io.Writer) int {
	_, _, mgr, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	mgr.Restore()
	mgr.Logout()
	fmt.Fprintln(w, "Logged out.")
	return 0
}
