package testutil

import (
	"testing"
)

// AdvancedTableResponse is a typical successful /query/advanced payload
// carrying a tabular result and a full workflow trace.
func AdvancedTableResponse(t *testing.T) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]interface{}{
		"success":     true,
		"resolvable":  true,
		"result_type": "table",
		"message":     "Here are the top customers by revenue.",
		"query":       "SELECT customer, revenue FROM sales ORDER BY revenue DESC",
		"result": []map[string]interface{}{
			{"customer": "Acme", "revenue": 1200.5},
			{"customer": "Globex", "revenue": 980.0},
			{"customer": "Initech", "revenue": 450.25},
		},
		"query_metadata": map[string]interface{}{
			"columns": []string{"customer", "revenue"},
		},
		"workflow_steps": []map[string]interface{}{
			{"step": "extract_terms", "success": true, "duration": 0.012},
			{"step": "vector_search", "success": true, "duration": 0.344},
			{"step": "generate_sql", "success": true, "duration": 1.822},
			{"step": "execute_sql", "success": true, "duration": 0.096},
		},
		"execution_time": 2.274,
	})
}

// AdvancedChartResponse is a /query/advanced payload with a Plotly chart
func AdvancedChartResponse(t *testing.T) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]interface{}{
		"success":     true,
		"resolvable":  true,
		"result_type": "chart",
		"message":     "Monthly sales, plotted.",
		"chart_data": map[string]interface{}{
			"data": []map[string]interface{}{
				{"type": "bar", "x": []string{"Jan", "Feb"}, "y": []float64{10, 20}},
			},
			"layout": map[string]interface{}{"title": "Monthly Sales"},
		},
		"query":          "SELECT month, total FROM monthly_sales",
		"execution_time": 1.5,
	})
}

// AdvancedFailureResponse is the /query/advanced failure envelope, as the
// backend returns it alongside a 500 status.
func AdvancedFailureResponse(t *testing.T) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]interface{}{
		"success":        false,
		"resolvable":     false,
		"message":        "Database connection failed",
		"execution_time": 0.031,
	})
}

// LegacyTextResponse is a typical successful legacy /query payload with a
// scalar text answer and a corrected retry.
func LegacyTextResponse(t *testing.T) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]interface{}{
		"resolvable": true,
		"message":    "Total sales for 2024.",
		"result": map[string]interface{}{
			"type":  "text",
			"value": "1,204,500 EUR",
		},
		"sql_query":       "SELECT SUM(amount) FROM sales WHERE year = 2024",
		"retry_attempted": true,
		"original_sql":    "SELECT SUM(amt) FROM sales WHERE year = 2024",
		"corrected_sql":   "SELECT SUM(amount) FROM sales WHERE year = 2024",
		"execution_time":  3.9,
		"insights":        []string{"Up 12% from 2023", "Q4 drove most of the growth"},
	})
}

// LegacyChartResponse is a legacy /query payload carrying a declarative
// chart spec under result.plotly_json.
func LegacyChartResponse(t *testing.T) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]interface{}{
		"resolvable": true,
		"message":    "Sales by region.",
		"result": map[string]interface{}{
			"type":       "chart",
			"chart_type": "bar",
			"plotly_json": map[string]interface{}{
				"type": "bar",
				"data": map[string]interface{}{
					"labels":   []string{"North", "South"},
					"datasets": []map[string]interface{}{{"data": []float64{42, 17}}},
				},
				"options": map[string]interface{}{},
			},
		},
		"sql_query":      "SELECT region, SUM(amount) FROM sales GROUP BY region",
		"execution_time": 2.1,
	})
}

// LegacyUnresolvableResponse is a legacy payload for a question the
// backend declined to answer.
func LegacyUnresolvableResponse(t *testing.T) []byte {
	t.Helper()
	return JSONMarshal(t, map[string]interface{}{
		"resolvable": false,
		"message":    "I could not find tables related to your question.",
	})
}

// SampleRows returns a small row set with mixed types and a null, for
// sorter and presenter tests.
func SampleRows() []map[string]interface{} {
	return []map[string]interface{}{
		{"name": "alpha", "count": 3.0},
		{"name": "Bravo", "count": 12.0},
		{"name": "charlie", "count": nil},
		{"name": "delta", "count": 7.0},
	}
}
