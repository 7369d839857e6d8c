package internal

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortState is the column ordering applied to a table view
type SortState struct {
	Key  string
	Desc bool
}

// ToggleSort flips direction when the same key is selected again and
// resets to ascending when a new key is selected.
func ToggleSort(s SortState, key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Desc: !s.Desc}
	}
	return SortState{Key: key}
}

// PresentOptions select the derived view over a table payload
type PresentOptions struct {
	Sort     SortState
	Search   string
	Page     int // 1-indexed
	PageSize int
}

// PagedRows is one page of the sorted, filtered row set
type PagedRows struct {
	Rows          []Row
	TotalFiltered int
	TotalPages    int
}

// Present computes a read-only view: sort, then filter, then paginate.
// The input rows are never mutated. Out-of-range pages are an error rather
// than a silent clamp; callers are expected to disable navigation at the
// boundary, and a clamp here would hide their bugs. Page 1 is always legal,
// even over an empty filtered set.
func Present(rows []Row, opts PresentOptions) (PagedRows, error) {
	if opts.PageSize <= 0 {
		return PagedRows{}, fmt.Errorf("page size must be positive, got %d", opts.PageSize)
	}
	if opts.Page < 1 {
		return PagedRows{}, fmt.Errorf("page must be >= 1, got %d", opts.Page)
	}

	view := make([]Row, len(rows))
	copy(view, rows)

	if opts.Sort.Key != "" {
		sortRows(view, opts.Sort)
	}
	if opts.Search != "" {
		view = filterRows(view, opts.Search)
	}

	total := len(view)
	totalPages := (total + opts.PageSize - 1) / opts.PageSize
	if opts.Page > totalPages && opts.Page != 1 {
		return PagedRows{}, fmt.Errorf("page %d out of range [1, %d]", opts.Page, totalPages)
	}

	start := (opts.Page - 1) * opts.PageSize
	end := start + opts.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return PagedRows{
		Rows:          view[start:end],
		TotalFiltered: total,
		TotalPages:    totalPages,
	}, nil
}

// sortRows orders the view stably by the sort key. Missing and null values
// sort after all defined values in both directions.
func sortRows(view []Row, s SortState) {
	sort.SliceStable(view, func(i, j int) bool {
		va, aok := view[i][s.Key]
		vb, bok := view[j][s.Key]
		if va == nil {
			aok = false
		}
		if vb == nil {
			bok = false
		}
		if !aok && !bok {
			return false
		}
		if !aok {
			return false
		}
		if !bok {
			return true
		}
		c := compareValues(va, vb)
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
}

// compareValues uses numeric ordering when both sides are numbers and
// case-insensitive lexicographic ordering otherwise.
func compareValues(a, b any) int {
	fa, aNum := numericValue(a)
	fb, bNum := numericValue(b)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(CellString(a)), strings.ToLower(CellString(b)))
}

func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// filterRows keeps rows where the term is a case-insensitive substring of
// at least one column value.
func filterRows(view []Row, term string) []Row {
	needle := strings.ToLower(term)
	out := make([]Row, 0, len(view))
	for _, row := range view {
		for _, v := range row {
			if v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(CellString(v)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Columns derives the displayed column set. A non-empty hint (the backend's
// own column order) wins; otherwise the union of all row keys in sorted
// order, so rows with divergent key sets still render.
func Columns(rows []Row, hint []string) []string {
	if len(hint) > 0 {
		return hint
	}
	seen := make(map[string]bool)
	var cols []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}
	sort.Strings(cols)
	return cols
}

// AbsentCell marks a missing or null value in the rendered table
const AbsentCell = "-"

// Cell returns the display string for one column of a row, with the
// absent-cell fallback for missing or null values.
func Cell(row Row, col string) string {
	v, ok := row[col]
	if !ok || v == nil {
		return AbsentCell
	}
	return CellString(v)
}

// CellString renders an arbitrary scalar the way the filter and sorter see it
func CellString(v any) string {
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
		return fmt.Sprintf("%v", val)
	}
}
