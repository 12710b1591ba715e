package web

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// numberSortKey selects the row-number column in ?sort=.
const numberSortKey = "#"

// View parameters read from the query string.
type tableQuery struct {
	Page  int
	Sort  string
	Order string
}

func parseTableQuery(page, sortKey, order string) tableQuery {
	q := tableQuery{Page: 1, Sort: sortKey, Order: OrderAsc}
	if p, err := strconv.Atoi(page); err == nil && p > 0 {
		q.Page = p
	}
	if strings.EqualFold(order, OrderDesc) {
		q.Order = OrderDesc
	}
	return q
}

// sortRows returns a sorted copy of rows. Unknown sort keys keep the server
// order. Ties keep their relative order.
func sortRows(t ui.Table, key, order string) []ui.Row {
	rows := slices.Clone(t.Rows)
	col := -1
	if key == numberSortKey {
		col = 0
	} else {
		for i, c := range t.Columns {
			if c.Field != "" && c.Field == key {
				col = i
				break
			}
		}
	}
	if col < 0 {
		return rows
	}

	slices.SortStableFunc(rows, func(a, b ui.Row) int {
		var c int
		if col == 0 {
			c = cmp.Compare(a.Index, b.Index)
		} else {
			c = compareValues(sortKey(a, col), sortKey(b, col))
		}
		if order == OrderDesc {
			return -c
		}
		return c
	})
	return rows
}

func sortKey(r ui.Row, col int) string {
	if col < len(r.Cells) {
		return r.Cells[col].Sort
	}
	return ""
}

// compareValues orders numbers numerically and everything else
// case-insensitively. Empty values sort last in ascending order.
func compareValues(a, b string) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return cmp.Compare(fa, fb)
	}
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}

// paginate returns the rows of page (1-based, clamped) and the page count.
func paginate(rows []ui.Row, page, pageSize int) ([]ui.Row, int, int) {
	if pageSize < 1 {
		pageSize = len(rows)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	totalPages := (len(rows) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(rows))
	return rows[start:end], page, totalPages
}
