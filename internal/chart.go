package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	chartTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	chartBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	chartLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// RenderChart draws a terminal rendition of a chart payload. Declarative
// bar/pie/line specs get proportional unicode bars; Plotly specs cannot be
// executed in a terminal, so they get a typed summary instead.
func RenderChart(c *ChartPayload, width int) string {
	if c == nil {
		return ""
	}
	if width < 20 {
		width = 20
	}

	switch c.Family {
	case ChartDeclarative:
		return renderDeclarative(c, width)
	case ChartPlotSpec:
		return renderPlotSummary(c)
	default:
		return chartLabelStyle.Render(fmt.Sprintf("(chart: unrecognized spec family %q)", c.Family))
	}
}

// renderDeclarative handles the {type, data, options} shape: data.labels
// paired with the first dataset's numeric values.
func renderDeclarative(c *ChartPayload, width int) string {
	var b strings.Builder

	title := declarativeTitle(c)
	b.WriteString(chartTitleStyle.Render(title))
	b.WriteString("\n")

	labels, values := declarativeSeries(c.Spec)
	if len(labels) == 0 || len(labels) != len(values) {
		b.WriteString(chartLabelStyle.Render("(chart data not renderable in terminal)"))
		return b.String()
	}

	maxVal := 0.0
	labelWidth := 0
	for i, label := range labels {
		if values[i] > maxVal {
			maxVal = values[i]
		}
		if n := len([]rune(label)); n > labelWidth {
			labelWidth = n
		}
	}
	if labelWidth > 24 {
		labelWidth = 24
	}
	barSpace := width - labelWidth - 14
	if barSpace < 4 {
		barSpace = 4
	}

	for i, label := range labels {
		if runes := []rune(label); len(runes) > labelWidth {
			label = string(runes[:labelWidth-1]) + "…"
		}
		// negative values (e.g. losses) get no bar, just the number
		barLen := 0
		if maxVal > 0 && values[i] > 0 {
			barLen = int(values[i] / maxVal * float64(barSpace))
			if barLen < 1 {
				barLen = 1
			}
		}
		b.WriteString(fmt.Sprintf("%*s ", labelWidth, label))
		b.WriteString(chartBarStyle.Render(strings.Repeat("█", barLen)))
		b.WriteString(chartLabelStyle.Render(fmt.Sprintf(" %s", CellString(values[i]))))
		if i < len(labels)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func declarativeTitle(c *ChartPayload) string {
	if opts := mapField(c.Spec, "options"); opts != nil {
		if t := stringField(opts, "title"); t != "" {
			return t
		}
	}
	if c.ChartType != "" {
		return strings.ToUpper(c.ChartType[:1]) + c.ChartType[1:] + " Chart"
	}
	return "Chart"
}

// declarativeSeries extracts labels plus the first dataset's values,
// tolerating both {labels, datasets:[{data}]} and {labels, values}.
func declarativeSeries(spec map[string]any) ([]string, []float64) {
	data := mapField(spec, "data")
	if data == nil {
		return nil, nil
	}

	var labels []string
	if arr, ok := data["labels"].([]any); ok {
		for _, l := range arr {
			labels = append(labels, CellString(l))
		}
	}

	raw := data["values"]
	if datasets, ok := data["datasets"].([]any); ok && len(datasets) > 0 {
		if first, ok := datasets[0].(map[string]any); ok {
			raw = first["data"]
		}
	}

	var values []float64
	if arr, ok := raw.([]any); ok {
		for _, v := range arr {
			f, ok := numericValue(v)
			if !ok {
				return nil, nil
			}
			values = append(values, f)
		}
	}
	return labels, values
}

// renderPlotSummary describes a Plotly {data, layout} spec without
// pretending to plot it.
func renderPlotSummary(c *ChartPayload) string {
	var b strings.Builder

	title := "Chart"
	if layout := mapField(c.Spec, "layout"); layout != nil {
		if t := stringField(layout, "title"); t != "" {
			title = t
		} else if tm := mapField(layout, "title"); tm != nil {
			if t := stringField(tm, "text"); t != "" {
				title = t
			}
		}
	}
	b.WriteString(chartTitleStyle.Render(title))
	b.WriteString("\n")

	traces, _ := c.Spec["data"].([]any)
	kind := c.ChartType
	points := 0
	for _, t := range traces {
		trace, ok := t.(map[string]any)
		if !ok {
			continue
		}
		if kind == "" {
			kind = stringField(trace, "type")
		}
		if xs, ok := trace["x"].([]any); ok {
			points += len(xs)
		} else if ys, ok := trace["y"].([]any); ok {
			points += len(ys)
		}
	}
	if kind == "" {
		kind = "plot"
	}

	b.WriteString(chartLabelStyle.Render(fmt.Sprintf(
		"%s chart · %d trace(s) · %d data point(s) · full spec available via export",
		kind, len(traces), points)))
	return b.String()
}
