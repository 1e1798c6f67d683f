// ABOUTME: Headlines command for the newsterm CLI
// ABOUTME: Fetches top articles across categories concurrently

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"newsterm/internal/client"
)

var headlinesPerCategory int

var headlinesCmd = &cobra.Command{
	Use:   "headlines [category...]",
	Short: "Show top articles per category",
	Long: `Fetch the top articles for each category. Without arguments all
categories are shown.

Exit codes:
  0 - Headlines printed
  1 - Not logged in or session expired
  2 - Error (connectivity, invalid input)`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHeadlines(ctx, os.Stdout, args)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(headlinesCmd)
	headlinesCmd.Flags().IntVar(&headlinesPerCategory, "per-category", 3, "Articles per category")
}

// runHeadlines fetches and prints the category digest, returns exit code
func runHeadlines(ctx context.Context, w io.Writer, categories []string) int {
	if headlinesPerCategory < 1 || headlinesPerCategory > 20 {
		fmt.Fprintln(w, "Error: --per-category must be between 1 and 20")
		return 2
	}
	for _, cat := range categories {
		if !validCategory(cat) {
			fmt.Fprintf(w, "Error: unknown category %q (valid: %s)\n", cat, strings.Join(client.Categories, ", "))
			return 2
		}
	}

	_, api, mgr, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	mgr.Restore()

	if !mgr.Snapshot().IsAuthenticated {
		fmt.Fprintln(w, "Not logged in. Run \"newsterm login\" first.")
		return 1
	}

	results, err := api.Headlines(ctx, categories, headlinesPerCategory)
	if err != nil {
		if client.IsUnauthorized(err) {
			mgr.Logout()
			fmt.Fprintln(w, "Session expired. Run \"newsterm login\" again.")
			return 1
		}
		fmt.Fprintf(w, "Error: %v\n", client.AsFailure(err))
		return 2
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	for _, section := range results {
		fmt.Fprintf(w, "%s\n", strings.ToUpper(section.Category))
		if len(section.Articles) == 0 {
			fmt.Fprintln(w, "  (no articles)")
		}
		for _, article := range section.Articles {
			fmt.Fprintf(w, "  %s\n", article.Title)
		}
		fmt.Fprintln(w)
	}
	return 0
}

func validCategory(cat string) bool {
	for _, c := range client.Categories {
		if c == cat {
			return true
		}
	}
	return false
}
