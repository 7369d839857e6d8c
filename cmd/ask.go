package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	askNoTyping   bool
	askDetails    bool
	askPageSize   int
	askSortKey    string
	askSortDesc   bool
	askSearch     string
	askMaxRetries int
	askChartPref  string
)

var (
	// Styles for ask command
	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true).
			Padding(0, 1)

	answerBodyStyle = lipgloss.NewStyle().
			Padding(0, 2)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	tableHeadStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	stepOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	stepFailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question and print the answer",
	Long: `Send one natural-language question to the query backend and print the
answer: text, a chart rendering, or a paged table.

The answer text is revealed with a typing animation (disable with
--no-typing). Use --details to show the generated SQL and the backend's
step-by-step execution trace.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(args[0])
		if question == "" {
			return fmt.Errorf("question must not be empty")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := cfg.NewBackendClient()

		opts := cfg.QueryOptions()
		if askMaxRetries > 0 {
			opts.MaxRetries = askMaxRetries
		}
		if askChartPref != "" {
			opts.ChartPreference = askChartPref
		}

		fmt.Println(questionStyle.Render("You") + " " + question)
		fmt.Println()

		internal.LogDebug("sending question to %s", cfg.BackendURL)
		msg := client.Ask(context.Background(), question, opts)

		fmt.Println(answerStyle.Render("Assistant"))
		typeOut(msg.Content, askNoTyping)
		fmt.Println()

		renderPayload(msg)

		// the detail panel only exists for resolvable turns
		if msg.Resolvable {
			if askDetails {
				renderDiagnostics(msg)
			} else if !msg.Diagnostics.Empty() {
				fmt.Println(mutedStyle.Render("(run with --details to see the generated SQL and workflow trace)"))
			}
		}
		return nil
	},
}

// typeOut prints content token by token at the fixed reveal interval,
// driving the same state machine the chat UI uses.
func typeOut(content string, instant bool) {
	seq := internal.NewSequencer(content)
	if instant {
		for !seq.Revealed() {
			seq.Advance()
		}
		fmt.Println(answerBodyStyle.Render(seq.Visible()))
		return
	}

	fmt.Print("  ")
	prev := ""
	for {
		done := seq.Advance()
		visible := seq.Visible()
		if done {
			// Revealed switches Visible to the verbatim content; keep the
			// single-line token form for the incremental print.
			visible = strings.Join(strings.Fields(content), " ")
		}
		fmt.Print(strings.TrimPrefix(visible, prev))
		prev = visible
		if done {
			break
		}
		time.Sleep(internal.DefaultTypingInterval)
	}
	fmt.Println()
}

// renderPayload prints the structured part of the answer, if any
func renderPayload(msg internal.Message) {
	switch msg.ResultType {
	case internal.ResultText:
		if msg.Text != nil && msg.Text.Value != "" {
			fmt.Println(answerBodyStyle.Render(valueStyle.Render(msg.Text.Value)))
			fmt.Println()
		}
	case internal.ResultChart:
		if msg.Chart != nil {
			fmt.Println(answerBodyStyle.Render(internal.RenderChart(msg.Chart, 80)))
			fmt.Println()
		}
	case internal.ResultTable:
		if msg.Table != nil {
			renderTablePage(msg.Table)
		}
	}

	for _, insight := range msg.Insights {
		fmt.Println(answerBodyStyle.Render("• " + insight))
	}
	if len(msg.Insights) > 0 {
		fmt.Println()
	}
}

// renderTablePage prints page 1 of the table with the requested sort and
// filter applied.
func renderTablePage(table *internal.TablePayload) {
	opts := internal.PresentOptions{
		Sort:     internal.SortState{Key: askSortKey, Desc: askSortDesc},
		Search:   askSearch,
		Page:     1,
		PageSize: askPageSize,
	}
	page, err := internal.Present(table.Rows, opts)
	if err != nil {
		internal.LogError("present table: %v", err)
		return
	}

	cols := internal.Columns(table.Rows, table.Columns)
	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)

	head := make([]string, len(cols))
	for i, col := range cols {
		label := col
		if col == askSortKey {
			if askSortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		head[i] = tableHeadStyle.Render(label)
	}
	_, _ = fmt.Fprintln(w, strings.Join(head, "\t")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, row := range page.Rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = internal.Cell(row, col)
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t")+"\t")
	}
	_ = w.Flush()

	if page.TotalPages > 1 {
		fmt.Println(mutedStyle.Render(fmt.Sprintf(
			"page 1/%d · %d row(s) · use 'chat' for interactive paging",
			page.TotalPages, page.TotalFiltered)))
	} else {
		fmt.Println(mutedStyle.Render(fmt.Sprintf("%d row(s)", page.TotalFiltered)))
	}
	fmt.Println()
}

// renderDiagnostics prints the detail panel content inline
func renderDiagnostics(msg internal.Message) {
	d := msg.Diagnostics
	if d.Empty() {
		fmt.Println(mutedStyle.Render("(no diagnostics reported)"))
		return
	}

	fmt.Println(tableHeadStyle.Render("Diagnostics"))
	if d.GeneratedQuery != "" {
		fmt.Println(answerBodyStyle.Render(d.GeneratedQuery))
	}
	for _, step := range d.WorkflowSteps {
		glyph := stepOKStyle.Render("✓")
		if step.Status == internal.StepFailed {
			glyph = stepFailStyle.Render("✗")
		} else if step.Status == internal.StepPending {
			glyph = mutedStyle.Render("…")
		}
		line := fmt.Sprintf("%s %s (%.3fs)", glyph, step.Name, step.DurationSeconds)
		if step.Error != "" {
			line += " " + stepFailStyle.Render(step.Error)
		}
		fmt.Println(answerBodyStyle.Render(line))
	}
	if d.Retry != nil {
		fmt.Println(answerBodyStyle.Render(mutedStyle.Render("retried after correction:")))
		fmt.Println(answerBodyStyle.Render("  original:  " + d.Retry.OriginalQuery))
		fmt.Println(answerBodyStyle.Render("  corrected: " + d.Retry.CorrectedQuery))
	}
	if d.ExecutionSeconds > 0 {
		fmt.Println(answerBodyStyle.Render(mutedStyle.Render(
			fmt.Sprintf("execution time: %.3fs", d.ExecutionSeconds))))
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askNoTyping, "no-typing", false, "Print the answer immediately without the typing animation")
	askCmd.Flags().BoolVar(&askDetails, "details", false, "Show generated SQL and workflow trace")
	askCmd.Flags().IntVar(&askPageSize, "page-size", 10, "Rows per page for table results")
	askCmd.Flags().StringVar(&askSortKey, "sort", "", "Sort table results by this column")
	askCmd.Flags().BoolVar(&askSortDesc, "desc", false, "Sort descending")
	askCmd.Flags().StringVar(&askSearch, "search", "", "Filter table rows by substring match")
	askCmd.Flags().IntVar(&askMaxRetries, "max-retries", 0, "Server-side SQL correction attempts")
	askCmd.Flags().StringVar(&askChartPref, "chart", "", "Chart preference hint (e.g. auto, bar, line)")
}
