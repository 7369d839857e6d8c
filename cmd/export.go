package cmd

import (
	"fmt"
	"os"

	"github.com/ayoubharati/dataware-chatbot/internal/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOutput string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <thread-id>",
	Short: "Export an archived conversation",
	Long: `Export a conversation archived with 'chat --save' to a file or stdout.

Supported formats:
  json      Full thread as a single JSON document
  jsonl     One message per line
  md        Markdown with tables and a diagnostics section
  yaml      Full thread as YAML

Examples:
  dataware-chatbot export a1b2c3d4 --format md -o report.md
  dataware-chatbot export a1b2c3d4 --format jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			return err
		}

		h, err := openHistory()
		if err != nil {
			return err
		}
		defer h.Close()

		thread, err := h.LoadThread(args[0])
		if err != nil {
			return err
		}
		if thread == nil {
			return fmt.Errorf("no archived conversation with id %q", args[0])
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := exporter.Export(thread, out); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if exportOutput != "" {
			fmt.Fprintf(os.Stderr, "Exported %d message(s) to %s\n", len(thread.Messages), exportOutput)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json, jsonl, md, yaml")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&historyPath, "history-db", "", "History database path (default ~/.dataware-chatbot/history.db)")
}
