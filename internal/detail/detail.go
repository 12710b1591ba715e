// Package detail populates the record modal.
package detail

import (
	"github.com/henrybloomingdale/litscrape/internal/format"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// SchemaSource reports the schema of the table currently on screen.
type SchemaSource interface {
	Schema() records.Schema
}

// Viewer shows one record of the current result set.
type Viewer struct {
	store  *records.Store
	schema SchemaSource
	view   ui.ModalView
}

// New creates a viewer. schema is usually the table renderer.
func New(store *records.Store, schema SchemaSource, view ui.ModalView) *Viewer {
	return &Viewer{store: store, schema: schema, view: view}
}

// Show opens the modal for the record at index. An index outside the current
// result set leaves the view untouched and returns false.
func (v *Viewer) Show(index int) bool {
	d, err := Build(v.store, v.schema.Schema(), index)
	if err != nil {
		return false
	}
	v.view.ShowModal(d)
	return true
}

// Build assembles the detail content for the record at index.
func Build(store *records.Store, schema records.Schema, index int) (ui.Detail, error) {
	rec, err := store.Get(index)
	if err != nil {
		return ui.Detail{}, err
	}

	fields := schema.Fields()
	d := ui.Detail{Index: index, Schema: schema, Fields: make([]ui.DetailField, 0, len(fields))}
	for _, f := range fields {
		d.Fields = append(d.Fields, Field(f, rec.Get(f)))
	}
	return d, nil
}

// Field fills one display target. Values are kept verbatim; link fields also
// get their targets.
func Field(field, value string) ui.DetailField {
	df := ui.DetailField{Field: field, Title: records.Title(field), Text: value}
	switch field {
	case records.FieldPubmedLink:
		if format.SafeHref(value) {
			df.Href = value
		}
	case records.FieldAuthorEmail:
		df.Href = format.MailtoHref(value)
	case records.FieldFullTextLinks:
		df.Anchors = format.LinksToAnchors(value)
	}
	return df
}
