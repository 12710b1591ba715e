package web

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/henrybloomingdale/litscrape/internal/ui"
)

func table(values ...string) ui.Table {
	t := ui.Table{Columns: []ui.Column{{Title: "#"}, {Field: "date", Title: "Date"}}}
	for i, v := range values {
		t.Rows = append(t.Rows, ui.Row{Index: i, Cells: []ui.Cell{{}, {Field: "date", Sort: v}}})
	}
	return t
}

func indices(rows []ui.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Index
	}
	return out
}

func TestSortRows(t *testing.T) {
	tbl := table("2021", "", "9", "2021", "abc")
	tests := []struct {
		name, key, order string
		want             []int
	}{
		{"unsorted", "", OrderAsc, []int{0, 1, 2, 3, 4}},
		{"unknown column", "nope", OrderAsc, []int{0, 1, 2, 3, 4}},
		{"numeric asc with empty last", "date", OrderAsc, []int{2, 0, 3, 4, 1}},
		{"desc", "date", OrderDesc, []int{1, 4, 0, 3, 2}},
		{"row number desc", "#", OrderDesc, []int{4, 3, 2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indices(sortRows(tbl, tt.key, tt.order))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("sortRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, indices(tbl.Rows)); diff != "" {
		t.Errorf("sortRows modified its input:\n%s", diff)
	}
}

func TestPaginate(t *testing.T) {
	rows := table("a", "b", "c", "d", "e").Rows
	tests := []struct {
		page, size    int
		wantIdx       []int
		wantPage      int
		wantTotalPage int
	}{
		{1, 2, []int{0, 1}, 1, 3},
		{3, 2, []int{4}, 3, 3},
		{9, 2, []int{4}, 3, 3},
		{0, 2, []int{0, 1}, 1, 3},
		{1, 0, []int{0, 1, 2, 3, 4}, 1, 1},
	}
	for _, tt := range tests {
		got, page, total := paginate(rows, tt.page, tt.size)
		if diff := cmp.Diff(tt.wantIdx, indices(got)); diff != "" {
			t.Errorf("paginate(%d, %d) rows mismatch:\n%s", tt.page, tt.size, diff)
		}
		if page != tt.wantPage || total != tt.wantTotalPage {
			t.Errorf("paginate(%d, %d) = page %d of %d, want %d of %d", tt.page, tt.size, page, total, tt.wantPage, tt.wantTotalPage)
		}
	}

	got, page, total := paginate(nil, 1, 10)
	if len(got) != 0 || page != 1 || total != 1 {
		t.Errorf("empty paginate = %d rows, page %d of %d", len(got), page, total)
	}
}

func TestParseTableQuery(t *testing.T) {
	q := parseTableQuery("x", "date", "DESC")
	if q.Page != 1 || q.Sort != "date" || q.Order != OrderDesc {
		t.Errorf("unexpected %+v", q)
	}
	if q := parseTableQuery("4", "", "sideways"); q.Page != 4 || q.Order != OrderAsc {
		t.Errorf("unexpected %+v", q)
	}
}
