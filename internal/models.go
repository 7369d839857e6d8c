package internal

import (
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ResultType is the display mode selected for an assistant turn
type ResultType string

const (
	ResultText    ResultType = "text"
	ResultChart   ResultType = "chart"
	ResultTable   ResultType = "table"
	ResultSummary ResultType = "summary"
	ResultUnknown ResultType = "unknown"
	ResultNone    ResultType = "none"
)

// ChartFamily distinguishes the two chart spec shapes the backend emits
type ChartFamily string

const (
	// ChartDeclarative is the simple {type, data, options} shape
	ChartDeclarative ChartFamily = "declarative"
	// ChartPlotSpec is a full Plotly {data, layout} specification
	ChartPlotSpec ChartFamily = "plot-spec"
)

// Message is one turn in a chat thread. User messages carry only content;
// assistant messages additionally carry the normalized backend result.
// Messages are immutable once appended to a thread.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Timestamp  time.Time  `json:"timestamp"`
	Resolvable bool       `json:"resolvable,omitempty"`
	ResultType ResultType `json:"result_type,omitempty"`

	// Exactly one of these is set, matching ResultType
	Text  *TextPayload  `json:"text,omitempty"`
	Chart *ChartPayload `json:"chart,omitempty"`
	Table *TablePayload `json:"table,omitempty"`

	Insights    []string     `json:"insights,omitempty"`
	Diagnostics *Diagnostics `json:"diagnostics,omitempty"`
}

// NewUserMessage creates a user message stamped with the current time
func NewUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// TextPayload holds a scalar answer
type TextPayload struct {
	Value string `json:"value"`
}

// ChartPayload holds an opaque chart description. Spec internals are not
// interpreted beyond family detection; the renderer decides what it can draw.
type ChartPayload struct {
	Family    ChartFamily    `json:"family"`
	ChartType string         `json:"chart_type,omitempty"`
	Spec      map[string]any `json:"spec"`
}

// Row is one record of a tabular result
type Row = map[string]any

// TablePayload holds row-oriented data. Columns preserves the backend's
// column order when it supplied one; otherwise it is empty and the
// presenter derives the column set from the rows.
type TablePayload struct {
	Columns []string `json:"columns,omitempty"`
	Rows    []Row    `json:"rows"`
}

// StepStatus is the outcome of one backend workflow step
type StepStatus string

const (
	StepSuccess StepStatus = "success"
	StepFailed  StepStatus = "failed"
	StepPending StepStatus = "pending"
)

// WorkflowStep is one entry of the backend's execution trace
type WorkflowStep struct {
	Name            string     `json:"name"`
	Status          StepStatus `json:"status"`
	DurationSeconds float64    `json:"duration_seconds"`
	Error           string     `json:"error,omitempty"`
}

// RetryInfo records a server-side SQL correction
type RetryInfo struct {
	OriginalQuery  string `json:"original_query"`
	CorrectedQuery string `json:"corrected_query"`
}

// Diagnostics is the optional trace bundle shown in the detail panel.
// Purely informational; it never affects control flow.
type Diagnostics struct {
	GeneratedQuery   string         `json:"generated_query,omitempty"`
	WorkflowSteps    []WorkflowStep `json:"workflow_steps,omitempty"`
	ExecutionSeconds float64        `json:"execution_seconds,omitempty"`
	Retry            *RetryInfo     `json:"retry,omitempty"`
}

// Empty reports whether the bundle carries nothing worth showing
func (d *Diagnostics) Empty() bool {
	if d == nil {
		return true
	}
	return d.GeneratedQuery == "" && len(d.WorkflowSteps) == 0 &&
		d.ExecutionSeconds == 0 && d.Retry == nil
}

// ChatThread is an ordered, append-only sequence of messages
type ChatThread struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// Clone returns a deep-enough copy for snapshot reads: the message slice is
// copied, and messages themselves are immutable by convention.
func (t *ChatThread) Clone() *ChatThread {
	if t == nil {
		return nil
	}
	c := *t
	c.Messages = make([]Message, len(t.Messages))
	copy(c.Messages, t.Messages)
	return &c
}

const titleMaxLen = 30

// TitleFromContent derives a thread title from its first user message:
// truncated to 30 characters with an ellipsis appended if longer.
func TitleFromContent(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxLen {
		return content
	}
	return string(runes[:titleMaxLen]) + "..."
}
