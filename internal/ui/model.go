package ui

import (
	"github.com/henrybloomingdale/litscrape/internal/format"
	"github.com/henrybloomingdale/litscrape/internal/records"
)

// Table is a rendered result set.
type Table struct {
	Schema  records.Schema
	Columns []Column
	Rows    []Row
}

// Column is one table heading. Field is empty for the row-number column.
type Column struct {
	Field string
	Title string
	// Width is a layout hint such as "8%"; empty means automatic.
	Width string
}

// Row is one record. Index is the record's position in the result set and is
// what a click on the row passes to the detail viewer.
type Row struct {
	Index int
	Label string
	Cells []Cell
}

// Cell holds one value rendered three ways.
type Cell struct {
	Field string
	// Text is plain, truncated text for terminals.
	Text string
	// HTML is escaped markup safe to embed in a page.
	HTML string
	// Sort is the raw value used for ordering.
	Sort string
	// Clickable cells open the detail view for their row.
	Clickable bool
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Detail is the content of the record modal.
type Detail struct {
	Index  int
	Schema records.Schema
	Fields []DetailField
}

// DetailField is one populated display target. Href is set for fields shown
// as a single link; Anchors for link lists.
type DetailField struct {
	Field   string
	Title   string
	Text    string
	Href    string
	Anchors []format.Anchor
}

// Get returns the field named field and whether it is present.
func (d Detail) Get(field string) (DetailField, bool) {
	for _, f := range d.Fields {
		if f.Field == field {
			return f, true
		}
	}
	return DetailField{}, false
}
