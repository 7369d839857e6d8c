package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
)

// MarkdownExporter exports threads in Markdown format
type MarkdownExporter struct{}

// Export exports a thread to Markdown format
func (e *MarkdownExporter) Export(thread *internal.ChatThread, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", thread.Title)
	_, _ = fmt.Fprintf(w, "**Thread:** %s  \n", thread.ID)
	if !thread.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Created:** %s  \n", thread.CreatedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(thread.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range thread.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
		}

		content := escapeMarkdown(msg.Content)
		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", msg.Role, timestamp, content)

		writePayload(w, msg)
		writeDiagnostics(w, msg.Diagnostics)

		if i < len(thread.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// writePayload renders structured payload: tables become markdown tables,
// text answers a quoted value, charts a note with their family.
func writePayload(w io.Writer, msg internal.Message) {
	switch msg.ResultType {
	case internal.ResultText:
		if msg.Text != nil {
			_, _ = fmt.Fprintf(w, "> **Answer:** %s\n\n", msg.Text.Value)
		}
	case internal.ResultTable:
		if msg.Table != nil {
			writeTable(w, msg.Table)
		}
	case internal.ResultChart:
		if msg.Chart != nil {
			_, _ = fmt.Fprintf(w, "> _%s chart (%s spec, not rendered in markdown)_\n\n",
				chartKind(msg.Chart), msg.Chart.Family)
		}
	}

	for _, insight := range msg.Insights {
		_, _ = fmt.Fprintf(w, "- %s\n", insight)
	}
	if len(msg.Insights) > 0 {
		_, _ = fmt.Fprintf(w, "\n")
	}
}

func chartKind(c *internal.ChartPayload) string {
	if c.ChartType != "" {
		return c.ChartType
	}
	return "unspecified"
}

func writeTable(w io.Writer, table *internal.TablePayload) {
	cols := internal.Columns(table.Rows, table.Columns)
	if len(cols) == 0 {
		return
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cols, " | "))
	sep := make([]string, len(cols))
	for i := range sep {
		sep[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | "))

	for _, row := range table.Rows {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = internal.Cell(row, col)
		}
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
	}
	_, _ = fmt.Fprintf(w, "\n")
}

func writeDiagnostics(w io.Writer, d *internal.Diagnostics) {
	if d.Empty() {
		return
	}

	_, _ = fmt.Fprintf(w, "<details><summary>Diagnostics</summary>\n\n")
	if d.GeneratedQuery != "" {
		_, _ = fmt.Fprintf(w, "```sql\n%s\n```\n\n", d.GeneratedQuery)
	}
	for _, step := range d.WorkflowSteps {
		_, _ = fmt.Fprintf(w, "- %s: %s (%.3fs)\n", step.Name, step.Status, step.DurationSeconds)
	}
	if d.Retry != nil {
		_, _ = fmt.Fprintf(w, "\nRetried query:\n\n```sql\n-- original\n%s\n-- corrected\n%s\n```\n",
			d.Retry.OriginalQuery, d.Retry.CorrectedQuery)
	}
	if d.ExecutionSeconds > 0 {
		_, _ = fmt.Fprintf(w, "\nExecution time: %.3fs\n", d.ExecutionSeconds)
	}
	_, _ = fmt.Fprintf(w, "\n</details>\n\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}
