package export

import (
	"io"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports threads in YAML format
type YAMLExporter struct{}

// Export exports a thread to YAML format
func (e *YAMLExporter) Export(thread *internal.ChatThread, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(thread)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
