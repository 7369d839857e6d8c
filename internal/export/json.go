package export

import (
	"encoding/json"
	"io"

	"github.com/ayoubharati/dataware-chatbot/internal"
)

// JSONExporter exports threads in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a thread to JSON format
func (e *JSONExporter) Export(thread *internal.ChatThread, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(thread)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
