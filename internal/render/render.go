// Package render turns the current result set into the table model the UI
// layers display.
package render

import (
	"strconv"
	"strings"
	"sync"

	"github.com/henrybloomingdale/litscrape/internal/format"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// NumberColumnTitle heads the 1-based row number column.
const NumberColumnTitle = "#"

// defaultLimit applies to fields without an entry in limits.
const defaultLimit = 80

// limits caps the displayed length of each field's cell.
var limits = map[string]int{
	records.FieldPubmedLink:       45,
	records.FieldTitle:            120,
	records.FieldDate:             20,
	records.FieldAbstract:         200,
	records.FieldAuthors:          100,
	records.FieldAffiliation:      100,
	records.FieldAuthorEmail:      50,
	records.FieldPMCID:            15,
	records.FieldDOI:              40,
	records.FieldFullTextLinks:    100,
	records.FieldMeshTerms:        100,
	records.FieldPublicationTypes: 60,
	records.FieldNCTNumber:        15,
	records.FieldConditions:       100,
	records.FieldInterventions:    100,
	records.FieldOutcomeMeasures:  150,
}

// multiline fields keep their line structure in HTML cells.
var multiline = map[string]bool{
	records.FieldAbstract:         true,
	records.FieldAuthors:          true,
	records.FieldAffiliation:      true,
	records.FieldMeshTerms:        true,
	records.FieldPublicationTypes: true,
	records.FieldConditions:       true,
	records.FieldInterventions:    true,
	records.FieldOutcomeMeasures:  true,
}

// widths are the fixed hints for the first three columns.
var widths = []string{"4%", "12%", "24%"}

// Limit returns the cell length cap for field.
func Limit(field string) int {
	if n, ok := limits[field]; ok {
		return n
	}
	return defaultLimit
}

// Clickable reports whether a cell of field opens the detail view. Link cells
// keep their own click behaviour.
func Clickable(field string) bool {
	switch field {
	case records.FieldPubmedLink, records.FieldAuthorEmail, records.FieldFullTextLinks:
		return false
	}
	return true
}

// Render builds the table for the store's current result set.
func Render(store *records.Store, schema records.Schema) ui.Table {
	return Table(store.Results(), schema)
}

// Table builds the table for results laid out by schema.
func Table(results records.ResultSet, schema records.Schema) ui.Table {
	fields := schema.Fields()

	columns := make([]ui.Column, 0, len(fields)+1)
	columns = append(columns, ui.Column{Title: NumberColumnTitle})
	for _, f := range fields {
		columns = append(columns, ui.Column{Field: f, Title: records.Title(f)})
	}
	for i := range columns {
		if i < len(widths) {
			columns[i].Width = widths[i]
		}
	}

	rows := make([]ui.Row, len(results))
	for i, rec := range results {
		label := strconv.Itoa(i + 1)
		cells := make([]ui.Cell, 0, len(fields)+1)
		cells = append(cells, ui.Cell{Text: label, HTML: label, Sort: label, Clickable: true})
		for _, f := range fields {
			cells = append(cells, Cell(f, rec.Get(f)))
		}
		rows[i] = ui.Row{Index: i, Label: label, Cells: cells}
	}

	return ui.Table{Schema: schema, Columns: columns, Rows: rows}
}

// Cell renders one field value.
func Cell(field, value string) ui.Cell {
	limit := Limit(field)
	c := ui.Cell{
		Field:     field,
		Text:      format.Truncate(flatten(value), limit),
		Sort:      value,
		Clickable: Clickable(field),
	}

	switch {
	case field == records.FieldFullTextLinks:
		anchors := format.LinksToAnchors(value)
		hrefs := make([]string, len(anchors))
		for i, a := range anchors {
			hrefs[i] = a.Href
		}
		c.Text = format.Truncate(strings.Join(hrefs, " "), limit)
		c.HTML = format.AnchorsHTML(anchors)
	case field == records.FieldPubmedLink && value != "":
		c.HTML = format.Anchor{Href: value, Text: format.Truncate(value, limit), Target: format.NewTab}.HTML()
	case field == records.FieldAuthorEmail && value != "":
		c.HTML = format.Anchor{Href: format.MailtoHref(value), Text: format.Truncate(value, limit)}.HTML()
	case multiline[field]:
		c.HTML = format.EscapeAndBreak(format.Truncate(value, limit))
	default:
		c.HTML = format.EscapeAndBreak(format.Truncate(flatten(value), limit))
	}
	return c
}

// flatten collapses whitespace runs, including newlines, into single spaces.
func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Renderer pushes rendered tables to a view and remembers the schema of the
// last render for the detail viewer.
type Renderer struct {
	store *records.Store
	view  ui.TableView

	mu     sync.RWMutex
	schema records.Schema
}

// New creates a renderer for store that displays on view.
func New(store *records.Store, view ui.TableView) *Renderer {
	return &Renderer{store: store, view: view, schema: records.General}
}

// Show renders the current result set with schema and replaces the view's
// table.
func (r *Renderer) Show(schema records.Schema) ui.Table {
	t := Render(r.store, schema)
	r.mu.Lock()
	r.schema = schema
	r.mu.Unlock()
	r.view.ShowTable(t)
	return t
}

// Schema returns the schema used by the last Show.
func (r *Renderer) Schema() records.Schema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schema
}
