package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
)

// JSONLExporter exports threads in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports a thread to JSONL format
func (e *JSONLExporter) Export(thread *internal.ChatThread, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range thread.Messages {
		obj := map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}

		if !msg.Timestamp.IsZero() {
			obj["timestamp"] = msg.Timestamp.Format(time.RFC3339)
		}
		if msg.Role == internal.RoleAssistant {
			obj["resolvable"] = msg.Resolvable
			obj["result_type"] = msg.ResultType
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
