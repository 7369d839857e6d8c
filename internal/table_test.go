package internal

import (
	"testing"
)

func sampleRows() []Row {
	return []Row{
		{"name": "delta", "count": 7.0},
		{"name": "alpha", "count": 3.0},
		{"name": "Bravo", "count": 12.0},
		{"name": "charlie", "count": nil},
	}
}

func TestToggleSort(t *testing.T) {
	s := SortState{}

	s = ToggleSort(s, "count")
	if s.Key != "count" || s.Desc {
		t.Errorf("first toggle should sort ascending, got %+v", s)
	}

	s = ToggleSort(s, "count")
	if !s.Desc {
		t.Errorf("second toggle on same key should flip to descending, got %+v", s)
	}

	s = ToggleSort(s, "name")
	if s.Key != "name" || s.Desc {
		t.Errorf("toggle on new key should reset to ascending, got %+v", s)
	}
}

func TestPresentNumericSort(t *testing.T) {
	page, err := Present(sampleRows(), PresentOptions{
		Sort: SortState{Key: "count"}, Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}

	want := []string{"alpha", "delta", "Bravo", "charlie"}
	for i, name := range want {
		if page.Rows[i]["name"] != name {
			t.Errorf("row %d = %v, want %s", i, page.Rows[i]["name"], name)
		}
	}
}

func TestPresentNullsLastBothDirections(t *testing.T) {
	for _, desc := range []bool{false, true} {
		page, err := Present(sampleRows(), PresentOptions{
			Sort: SortState{Key: "count", Desc: desc}, Page: 1, PageSize: 10,
		})
		if err != nil {
			t.Fatalf("Present(desc=%v) error: %v", desc, err)
		}
		last := page.Rows[len(page.Rows)-1]
		if last["name"] != "charlie" {
			t.Errorf("desc=%v: null row should sort last, got %v", desc, last["name"])
		}
	}
}

func TestPresentLexicographicSortIgnoresCase(t *testing.T) {
	page, err := Present(sampleRows(), PresentOptions{
		Sort: SortState{Key: "name"}, Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}

	want := []string{"alpha", "Bravo", "charlie", "delta"}
	for i, name := range want {
		if page.Rows[i]["name"] != name {
			t.Errorf("row %d = %v, want %s", i, page.Rows[i]["name"], name)
		}
	}
}

func TestPresentDoubleToggleRoundTrip(t *testing.T) {
	rows := sampleRows()

	asc := ToggleSort(SortState{}, "count")
	desc := ToggleSort(asc, "count")
	again := ToggleSort(desc, "count")

	if again != asc {
		t.Fatalf("double toggle should return to ascending: %+v vs %+v", again, asc)
	}

	first, err := Present(rows, PresentOptions{Sort: asc, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	second, err := Present(rows, PresentOptions{Sort: again, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	for i := range first.Rows {
		if first.Rows[i]["name"] != second.Rows[i]["name"] {
			t.Errorf("round-tripped sort diverged at row %d", i)
		}
	}
}

func TestPresentFilter(t *testing.T) {
	page, err := Present(sampleRows(), PresentOptions{
		Search: "HA", Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	// matches "alpha" and "charlie" case-insensitively
	if page.TotalFiltered != 2 {
		t.Errorf("TotalFiltered = %d, want 2", page.TotalFiltered)
	}

	// filtering is applied after sorting: the same filter over a sorted view
	// yields the same row set
	sorted, err := Present(sampleRows(), PresentOptions{
		Sort: SortState{Key: "count"}, Search: "HA", Page: 1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if sorted.TotalFiltered != page.TotalFiltered {
		t.Errorf("sort must not change the filtered set: %d vs %d",
			sorted.TotalFiltered, page.TotalFiltered)
	}

	// filtering is idempotent: re-filtering the visible set changes nothing
	again, err := Present(page.Rows, PresentOptions{Search: "HA", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if again.TotalFiltered != page.TotalFiltered {
		t.Errorf("second filter pass changed the set: %d vs %d",
			again.TotalFiltered, page.TotalFiltered)
	}
}

func TestPresentPagination(t *testing.T) {
	rows := make([]Row, 25)
	for i := range rows {
		rows[i] = Row{"n": float64(i)}
	}

	seen := 0
	for page := 1; page <= 3; page++ {
		p, err := Present(rows, PresentOptions{Page: page, PageSize: 10})
		if err != nil {
			t.Fatalf("Present(page=%d) error: %v", page, err)
		}
		if p.TotalPages != 3 {
			t.Errorf("TotalPages = %d, want 3", p.TotalPages)
		}
		seen += len(p.Rows)
	}
	if seen != 25 {
		t.Errorf("pages covered %d rows, want 25", seen)
	}
}

func TestPresentPageErrors(t *testing.T) {
	rows := sampleRows()

	tests := []struct {
		name string
		opts PresentOptions
	}{
		{"zero page size", PresentOptions{Page: 1, PageSize: 0}},
		{"negative page", PresentOptions{Page: -1, PageSize: 10}},
		{"zero page", PresentOptions{Page: 0, PageSize: 10}},
		{"page out of range", PresentOptions{Page: 5, PageSize: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Present(rows, tt.opts); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPresentPageOneOnEmptySet(t *testing.T) {
	page, err := Present(nil, PresentOptions{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("page 1 over an empty set must be legal: %v", err)
	}
	if len(page.Rows) != 0 || page.TotalFiltered != 0 {
		t.Errorf("unexpected page: %+v", page)
	}

	// a filter that matches nothing behaves the same
	page, err = Present(sampleRows(), PresentOptions{Search: "zzz", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("page 1 over an empty filtered set must be legal: %v", err)
	}
	if page.TotalFiltered != 0 {
		t.Errorf("TotalFiltered = %d, want 0", page.TotalFiltered)
	}
}

func TestPresentDoesNotMutateInput(t *testing.T) {
	rows := sampleRows()
	first := rows[0]["name"]

	if _, err := Present(rows, PresentOptions{
		Sort: SortState{Key: "name"}, Page: 1, PageSize: 10,
	}); err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if rows[0]["name"] != first {
		t.Error("Present must not reorder the caller's rows")
	}
}

func TestColumns(t *testing.T) {
	rows := []Row{
		{"b": 1.0, "a": 2.0},
		{"c": 3.0},
	}

	got := Columns(rows, nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Columns() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Columns()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	hinted := Columns(rows, []string{"c", "a"})
	if len(hinted) != 2 || hinted[0] != "c" {
		t.Errorf("hint should win verbatim, got %v", hinted)
	}
}

func TestCellAbsentValues(t *testing.T) {
	row := Row{"present": "x", "null": nil}

	if Cell(row, "present") != "x" {
		t.Errorf("Cell(present) = %q", Cell(row, "present"))
	}
	if Cell(row, "null") != AbsentCell {
		t.Errorf("Cell(null) = %q, want %q", Cell(row, "null"), AbsentCell)
	}
	if Cell(row, "missing") != AbsentCell {
		t.Errorf("Cell(missing) = %q, want %q", Cell(row, "missing"), AbsentCell)
	}
}

func TestCellStringFormatsNumbers(t *testing.T) {
	if got := CellString(12.0); got != "12" {
		t.Errorf("CellString(12.0) = %q, want 12", got)
	}
	if got := CellString(1.5); got != "1.5" {
		t.Errorf("CellString(1.5) = %q, want 1.5", got)
	}
}
