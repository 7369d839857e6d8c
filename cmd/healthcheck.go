package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	healthcheckProbe bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the query backend is reachable",
	Long: `Check the health of the chat setup by verifying:
  • Effective configuration (backend URL, timeout, contract)
  • Backend /health endpoint reachability
  • Optionally, a cheap end-to-end probe query (--probe)

The probe sends a query with the generation step disabled (call_gemini=false),
so it exercises term extraction and vector search without an LLM call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(sectionStyle.Render("🔍 DataWare Chatbot Health Check"))
		fmt.Println()

		// Step 1: Resolve configuration
		fmt.Println(infoStyle.Render("Step 1: Resolving configuration..."))
		cfg, err := loadConfig()
		if err != nil {
			fmt.Println(errStyle.Render("❌ Failed to load configuration:"), err)
			os.Exit(1)
		}
		fmt.Println(successStyle.Render("✅ Configuration resolved"))
		fmt.Printf("   Backend: %s\n", cfg.BackendURL)
		fmt.Printf("   Timeout: %s\n", cfg.Timeout())
		if cfg.LegacyContract {
			fmt.Printf("   Contract: legacy (/query)\n")
		} else {
			fmt.Printf("   Contract: advanced (/query/advanced)\n")
		}
		fmt.Println()

		// Step 2: Probe the health endpoint
		fmt.Println(infoStyle.Render("Step 2: Checking backend /health..."))
		client := cfg.NewBackendClient()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		status, err := client.Health(ctx)
		if status != internal.StatusConnected {
			fmt.Println(errStyle.Render("❌ Backend health check failed"))
			fmt.Println()
			fmt.Println("Error details:")
			fmt.Println(err)
			fmt.Println()
			fmt.Println("Make sure the query-generation service is running, e.g.:")
			fmt.Println("  python query_generation_app.py   # serves " + internal.DefaultBackendURL)
			return fmt.Errorf("health check failed: backend unreachable")
		}
		fmt.Println(successStyle.Render("✅ Backend is healthy"))
		fmt.Println()

		// Step 3: Optional end-to-end probe
		if healthcheckProbe {
			fmt.Println(infoStyle.Render("Step 3: Sending probe query (generation disabled)..."))
			noGemini := false
			probeOpts := internal.QueryOptions{CallGemini: &noGemini, PerTermK: 3, WholeQueryK: 3}
			msg := client.Ask(context.Background(), "how many tables are available", probeOpts)
			if msg.ResultType == internal.ResultNone && !msg.Resolvable {
				fmt.Println(warningStyle.Render("⚠️  Probe query did not resolve"))
				fmt.Printf("   Backend said: %s\n", msg.Content)
			} else {
				fmt.Println(successStyle.Render("✅ Probe query answered"))
				fmt.Printf("   Result type: %s\n", msg.ResultType)
			}
			fmt.Println()
		}

		// Summary
		fmt.Println(sectionStyle.Render("📊 Summary"))
		fmt.Println()
		fmt.Println(successStyle.Render("✅ Health check passed!"))
		fmt.Println(successStyle.Render("   • Backend: " + cfg.BackendURL))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckProbe, "probe", false, "Also send a cheap end-to-end probe query")
}
