// ABOUTME: Search command for the newsterm CLI
// ABOUTME: Queries the news endpoint and prints matching articles

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

var (
	searchCategory string
	searchPageSize int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search news articles",
	Long: `Search the news endpoint with a free-text query or a category.

Requires a stored session (run "newsterm login" first).

Exit codes:
  0 - Articles printed
  1 - Not logged in or session expired
  2 - Error (connectivity, invalid input)`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runSearch(ctx, os.Stdout, args)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "News category (technology, business, sports, health, science)")
	searchCmd.Flags().IntVar(&searchPageSize, "page-size", 20, "Number of articles to fetch")
}

// runSearch executes the query and returns exit code
func runSearch(ctx context.Context, w io.Writer, args []string) int {
	if searchPageSize < 1 || searchPageSize > 100 {
		fmt.Fprintln(w, "Error: --page-size must be between 1 and 100")
		return 2
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		query = client.CategoryQuery(searchCategory)
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

	news, err := api.SearchNews(ctx, query, searchPageSize)
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
		data, _ := json.MarshalIndent(news.Articles, "", "  ")
		fmt.Fprintln(w, string(data))
		return 0
	}

	if len(news.Articles) == 0 {
		fmt.Fprintf(w, "No articles for %q\n", query)
		return 0
	}

	fmt.Fprintf(w, "%d articles for %q\n\n", len(news.Articles), query)
	for _, article := range news.Articles {
		fmt.Fprintf(w, "  %s\n", article.Title)
		meta := article.Source.Name
		if article.PublishedAt != "" {
			meta += " · " + article.PublishedAt
		}
		fmt.Fprintf(w, "    %s\n    %s\n\n", meta, article.URL)
	}
	return 0
}
