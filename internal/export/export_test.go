package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ayoubharati/dataware-chatbot/internal"
	"gopkg.in/yaml.v3"
)

func sampleThread() *internal.ChatThread {
	return &internal.ChatThread{
		ID:        "thread-1",
		Title:     "top customers",
		CreatedAt: time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Messages: []internal.Message{
			{
				Role:      internal.RoleUser,
				Content:   "top customers by revenue",
				Timestamp: time.Date(2026, 8, 1, 10, 0, 1, 0, time.UTC),
			},
			{
				Role:       internal.RoleAssistant,
				Content:    "Here are the top customers.",
				Timestamp:  time.Date(2026, 8, 1, 10, 0, 5, 0, time.UTC),
				Resolvable: true,
				ResultType: internal.ResultTable,
				Table: &internal.TablePayload{
					Columns: []string{"customer", "revenue"},
					Rows: []internal.Row{
						{"customer": "Acme", "revenue": 1200.5},
						{"customer": "Globex", "revenue": nil},
					},
				},
				Insights: []string{"Acme leads by a wide margin"},
				Diagnostics: &internal.Diagnostics{
					GeneratedQuery: "SELECT customer, revenue FROM sales",
					WorkflowSteps: []internal.WorkflowStep{
						{Name: "generate_sql", Status: internal.StepSuccess, DurationSeconds: 1.2},
					},
					ExecutionSeconds: 2.1,
				},
			},
		},
	}
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"json", "json", false},
		{"jsonl", "jsonl", false},
		{"yaml", "yaml", false},
		{"md", "md", false},
		{"markdown", "md", false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exp, err := NewExporter(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for unsupported format")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewExporter(%q) error: %v", tt.format, err)
			}
			if exp.Extension() != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", exp.Extension(), tt.wantExt)
			}
		})
	}
}

func TestJSONExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleThread(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var decoded internal.ChatThread
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported JSON must decode: %v", err)
	}
	if decoded.ID != "thread-1" || len(decoded.Messages) != 2 {
		t.Errorf("round trip lost data: %+v", decoded)
	}
	if decoded.Messages[1].Table == nil || len(decoded.Messages[1].Table.Rows) != 2 {
		t.Error("table payload lost in round trip")
	}
}

func TestYAMLExportRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleThread(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported YAML must decode: %v", err)
	}
	if decoded["title"] != "top customers" {
		t.Errorf("title = %v", decoded["title"])
	}
}

func TestJSONLExportOneLinePerMessage(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(sampleThread(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines []map[string]any
	for scanner.Scan() {
		var obj map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &obj); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		lines = append(lines, obj)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["role"] != "user" {
		t.Errorf("lines[0].role = %v", lines[0]["role"])
	}
	if lines[1]["result_type"] != "table" {
		t.Errorf("assistant line should carry result_type, got %v", lines[1])
	}
	if _, ok := lines[0]["result_type"]; ok {
		t.Error("user lines should not carry result_type")
	}
}

func TestMarkdownExport(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleThread(), &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# top customers",
		"**user:**",
		"**assistant:**",
		"| customer | revenue |",
		"| Acme | 1200.5 |",
		"| Globex | - |",
		"- Acme leads by a wide margin",
		"<details><summary>Diagnostics</summary>",
		"```sql",
		"SELECT customer, revenue FROM sales",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in markdown output:\n%s", want, out)
		}
	}
}

func TestMarkdownEscaping(t *testing.T) {
	thread := &internal.ChatThread{
		ID:    "t",
		Title: "escaping",
		Messages: []internal.Message{
			{Role: internal.RoleUser, Content: "this has **bold** markers"},
		},
	}

	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(thread, &buf); err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	if !strings.Contains(buf.String(), `\*\*bold\*\*`) {
		t.Errorf("bold markers should be escaped:\n%s", buf.String())
	}
}
