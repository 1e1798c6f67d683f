// ABOUTME: Root command for the newsterm CLI
// ABOUTME: Handles global flags and session bootstrapping

package cmd

import (
	"github.com/spf13/cobra"

	"newsterm/internal/client"
	"newsterm/internal/config"
	"newsterm/internal/session"
	"newsterm/internal/tokenstore"
)

var (
	apiURL     string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "newsterm",
	Short: "Terminal client for the news aggregation service",
	Long: `newsterm is a terminal client for the news aggregation service.

Run it without arguments to open the interactive browser. Subcommands
cover scripted use: login, logout, status, and search.

Environment Variables:
  NEWSTERM_API_URL     Backend API URL (default: http://localhost:8000)
  NEWSTERM_TIMEOUT     Request timeout (default: 30s)
  NEWSTERM_CONFIG_DIR  Token and log directory (default: ~/.config/newsterm)
  NEWSTERM_KEYRING     Store tokens in the OS keyring (default: false)
  NEWSTERM_DEBUG       Write a TUI debug log (default: false)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides NEWSTERM_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}

// newSession builds the shared client stack: config, gateway, token store,
// and session manager. The --api-url flag wins over the environment.
func newSession() (*config.Config, *client.Client, *session.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	api := client.New(cfg.APIURL)
	api.SetTimeout(cfg.RequestTimeout)

	store := tokenstore.Open(cfg.ConfigDir, cfg.UseKeyring)
	mgr := session.NewManager(store, api)
	return cfg, api, mgr, nil
}
