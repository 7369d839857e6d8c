package internal

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Canned fallback strings used when the backend omits its message field
const (
	FallbackFailure      = "Sorry, I encountered an error while processing your question. Please try again."
	FallbackUnresolvable = "I could not resolve this question with the available data."
)

// Normalizer converts raw backend responses to assistant messages. It is
// total over the space of inputs: any payload, including garbage bytes,
// maps to exactly one valid Message. Two backend contracts are recognized:
// the advanced one (top-level success/result_type/chart_data/workflow_steps)
// and the legacy one (resolvable plus a nested result descriptor).
type Normalizer struct {
	backendURL string
}

// NewNormalizer creates a Normalizer. backendURL is only used to name the
// expected service location in connectivity-failure messages.
func NewNormalizer(backendURL string) *Normalizer {
	return &Normalizer{backendURL: backendURL}
}

// Normalize maps one raw response body to one assistant message. Undecodable
// bodies are treated as a connectivity failure.
func (n *Normalizer) Normalize(raw []byte) Message {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		LogDebug("response body is not a JSON object: %v", err)
		return n.TransportFailure()
	}
	return n.NormalizeMap(obj)
}

// TransportFailure builds the fixed assistant message for request timeouts,
// unreachable backends and malformed response bodies.
func (n *Normalizer) TransportFailure() Message {
	return Message{
		Role:       RoleAssistant,
		Timestamp:  time.Now(),
		Resolvable: false,
		ResultType: ResultNone,
		Content: fmt.Sprintf("I could not reach the query backend at %s. "+
			"Please check that the service is running and try again.", n.backendURL),
	}
}

// NormalizeMap maps a decoded response object to one assistant message
func (n *Normalizer) NormalizeMap(obj map[string]any) Message {
	msg := Message{
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}

	// The legacy contract never sends a success flag; its presence of
	// resolvable on a 200 implies transport-level success.
	success := boolField(obj, "success")
	if !hasField(obj, "success") && hasField(obj, "resolvable") {
		success = true
	}
	resolvable := boolField(obj, "resolvable")
	text := stringField(obj, "message")

	if !success {
		msg.Resolvable = false
		msg.ResultType = ResultNone
		msg.Content = text
		if msg.Content == "" {
			msg.Content = FallbackFailure
		}
		if secs := floatField(obj, "execution_time"); secs > 0 {
			msg.Diagnostics = &Diagnostics{ExecutionSeconds: secs}
		}
		return msg
	}

	if !resolvable {
		msg.Resolvable = false
		msg.ResultType = ResultNone
		msg.Content = text
		if msg.Content == "" {
			msg.Content = FallbackUnresolvable
		}
		msg.Diagnostics = decodeDiagnostics(obj)
		return msg
	}

	msg.Resolvable = true
	msg.Content = text
	msg.Insights = decodeInsights(obj)
	msg.Diagnostics = decodeDiagnostics(obj)
	n.classify(obj, &msg)

	if msg.Content == "" {
		msg.Content = "Here is what I found."
	}
	return msg
}

// classify inspects the result descriptor and fills ResultType plus the
// matching payload. Order matters: chart beats table beats text.
func (n *Normalizer) classify(obj map[string]any, msg *Message) {
	if chart := decodeChart(obj); chart != nil {
		msg.ResultType = ResultChart
		msg.Chart = chart
		return
	}

	if rows, cols, ok := decodeRows(obj); ok {
		msg.ResultType = ResultTable
		msg.Table = &TablePayload{Columns: cols, Rows: rows}
		return
	}

	if value, ok := decodeText(obj); ok {
		msg.ResultType = ResultText
		msg.Text = &TextPayload{Value: value}
		return
	}

	if msg.Content != "" {
		msg.ResultType = ResultSummary
		return
	}
	msg.ResultType = ResultUnknown
}

// decodeChart finds a chart spec under any of the known keys and detects
// its family. Returns nil when the payload carries no chart.
func decodeChart(obj map[string]any) *ChartPayload {
	spec := mapField(obj, "chart_data")
	if spec == nil {
		spec = mapField(obj, "chart_json")
	}
	chartType := ""

	// Legacy contract nests the chart under result.plotly_json
	if spec == nil {
		if result := mapField(obj, "result"); result != nil && stringField(result, "type") == "chart" {
			chartType = stringField(result, "chart_type")
			spec = mapField(result, "plotly_json")
			if spec == nil {
				spec = mapField(result, "value")
			}
		}
	}
	if spec == nil {
		return nil
	}

	family := chartFamily(spec)
	if family == "" {
		return nil
	}
	if chartType == "" {
		chartType = stringField(obj, "chart_type")
	}
	if chartType == "" && family == ChartDeclarative {
		chartType = stringField(spec, "type")
	}
	return &ChartPayload{Family: family, ChartType: chartType, Spec: spec}
}

// chartFamily sniffs which spec shape this is. {type,data,options} is the
// declarative family; {data,layout} is a Plotly spec.
func chartFamily(spec map[string]any) ChartFamily {
	if hasField(spec, "type") && hasField(spec, "data") && hasField(spec, "options") {
		return ChartDeclarative
	}
	if hasField(spec, "data") && hasField(spec, "layout") {
		return ChartPlotSpec
	}
	return ""
}

// decodeRows extracts a row array from either contract: a top-level result
// array (advanced) or result.value when result.type is "table" (legacy).
// Column order hints come from query_metadata.columns when present.
func decodeRows(obj map[string]any) ([]Row, []string, bool) {
	candidate := obj["result"]
	if result := mapField(obj, "result"); result != nil {
		if stringField(result, "type") == "table" {
			candidate = result["value"]
		} else {
			candidate = nil
		}
	}

	arr, ok := candidate.([]any)
	if !ok || len(arr) == 0 {
		return nil, nil, false
	}
	rows := make([]Row, 0, len(arr))
	for _, item := range arr {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, nil, false
		}
		rows = append(rows, record)
	}

	var cols []string
	if meta := mapField(obj, "query_metadata"); meta != nil {
		cols = stringSlice(meta["columns"])
	}
	return rows, cols, true
}

// decodeText extracts a scalar answer: result.value when result.type is
// "text" (legacy), or a top-level scalar result (advanced).
func decodeText(obj map[string]any) (string, bool) {
	if result := mapField(obj, "result"); result != nil {
		if stringField(result, "type") == "text" {
			return scalarString(result["value"]), true
		}
		return "", false
	}
	switch v := obj["result"].(type) {
	case string:
		return v, true
	case float64, bool:
		return scalarString(v), true
	}
	return "", false
}

// decodeDiagnostics copies every diagnostic field it can find. All fields
// are individually optional across both contracts.
func decodeDiagnostics(obj map[string]any) *Diagnostics {
	d := &Diagnostics{
		ExecutionSeconds: floatField(obj, "execution_time"),
	}
	d.GeneratedQuery = stringField(obj, "sql_query")
	if d.GeneratedQuery == "" {
		d.GeneratedQuery = stringField(obj, "query")
	}
	d.WorkflowSteps = decodeSteps(obj["workflow_steps"])
	if boolField(obj, "retry_attempted") {
		d.Retry = &RetryInfo{
			OriginalQuery:  stringField(obj, "original_sql"),
			CorrectedQuery: stringField(obj, "corrected_sql"),
		}
	}
	if d.Empty() {
		return nil
	}
	return d
}

func decodeSteps(v any) []WorkflowStep {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	steps := make([]WorkflowStep, 0, len(arr))
	for _, item := range arr {
		raw, ok := item.(map[string]any)
		if !ok {
			continue
		}
		step := WorkflowStep{
			Name:            stringField(raw, "step"),
			DurationSeconds: floatField(raw, "duration"),
			Error:           stringField(raw, "error"),
		}
		if step.Name == "" {
			step.Name = stringField(raw, "name")
		}
		if step.DurationSeconds == 0 {
			step.DurationSeconds = floatField(raw, "duration_seconds")
		}
		step.Status = stepStatus(raw)
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil
	}
	return steps
}

func stepStatus(raw map[string]any) StepStatus {
	if s := stringField(raw, "status"); s != "" {
		switch strings.ToLower(s) {
		case "success", "ok", "completed":
			return StepSuccess
		case "failed", "error":
			return StepFailed
		default:
			return StepPending
		}
	}
	if hasField(raw, "success") {
		if boolField(raw, "success") {
			return StepSuccess
		}
		return StepFailed
	}
	return StepPending
}

func decodeInsights(obj map[string]any) []string {
	switch v := obj["insights"].(type) {
	case []any:
		return stringSlice(v)
	case string:
		var out []string
		for _, line := range strings.Split(v, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				out = append(out, line)
			}
		}
		return out
	}
	return nil
}

// Loose field accessors. Missing or wrongly typed fields default rather
// than error, which is what keeps Normalize total.

func hasField(obj map[string]any, key string) bool {
	_, ok := obj[key]
	return ok
}

func boolField(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func floatField(obj map[string]any, key string) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}

func mapField(obj map[string]any, key string) map[string]any {
	m, _ := obj[key].(map[string]any)
	return m
}

func stringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// scalarString renders a scalar JSON value the way the backend would have
func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
