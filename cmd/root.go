package cmd

import (
	"fmt"
	"os"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	backendURL string
	timeoutMS  int
	legacyMode bool
	configPath string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dataware-chatbot",
	Short: "Chat with your data warehouse in plain language",
	Long: `A terminal chat client for the DataWare query backend.

Questions are sent to a query-generation service that turns them into SQL,
runs it, and answers with text, a chart, or a table. This client keeps the
conversation, animates each answer, and lets you sort, filter and page
through tabular results.

Quick Start:
  dataware-chatbot chat                      # Interactive chat session
  dataware-chatbot ask "total sales 2024"    # One question, one answer
  dataware-chatbot healthcheck               # Verify the backend is reachable
  dataware-chatbot history list              # Browse saved conversations
  dataware-chatbot export <thread-id>        # Export a saved conversation

The backend location comes from --backend, DATAWARE_BACKEND_URL, or the
config file (~/.dataware-chatbot.yaml), in that order.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration: defaults, config file,
// environment, then the persistent flags on top.
func loadConfig() (internal.Config, error) {
	path := configPath
	if path == "" {
		path = internal.DefaultConfigPath()
	}
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		return cfg, err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if timeoutMS > 0 {
		cfg.TimeoutMS = timeoutMS
	}
	if legacyMode {
		cfg.LegacyContract = true
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Query backend base URL (default http://localhost:5001)")
	rootCmd.PersistentFlags().IntVar(&timeoutMS, "timeout", 0, "Request timeout in milliseconds")
	rootCmd.PersistentFlags().BoolVar(&legacyMode, "legacy", false, "Use the legacy /query contract instead of /query/advanced")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default ~/.dataware-chatbot.yaml)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
