// Package records defines the scraped record model, the two result schemas,
// and the store holding the current result set.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Field names used by the scraping server.
const (
	FieldPubmedLink       = "Pubmed link"
	FieldTitle            = "heading_title"
	FieldDate             = "date"
	FieldAbstract         = "abstract"
	FieldAuthors          = "authors_list"
	FieldAffiliation      = "affiliation"
	FieldAuthorEmail      = "author_email"
	FieldPMCID            = "pmcid"
	FieldDOI              = "doi"
	FieldFullTextLinks    = "full_text_links"
	FieldMeshTerms        = "mesh_terms"
	FieldPublicationTypes = "publication_types"

	FieldNCTNumber       = "nct_number"
	FieldConditions      = "conditions"
	FieldInterventions   = "interventions"
	FieldOutcomeMeasures = "outcome_measures"
)

// Record is one scraped entry: field name to text. Absent fields read as "".
type Record map[string]string

// Get returns the value of field, or "" when it is absent.
func (r Record) Get(field string) string {
	return r[field]
}

// UnmarshalJSON accepts any JSON object and coerces its values to text.
// Numbers and booleans are formatted, null becomes "", arrays are joined
// with newlines, nested objects are kept as compact JSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	out := make(Record, len(raw))
	for k, v := range raw {
		out[k] = coerce(v)
	}
	*r = out
	return nil
}

func coerce(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return ""
	}
	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(v, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, it := range items {
				parts = append(parts, coerce(it))
			}
			return strings.Join(parts, "\n")
		}
	}
	return string(v)
}

// ResultSet is the ordered list of records from one search. The index of a
// record is its only identity.
type ResultSet []Record
