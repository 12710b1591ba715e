package records

import "fmt"

// Schema identifies which record layout a result set uses.
type Schema string

const (
	// General is the PubMed literature layout returned by /scrap.
	General Schema = "general"
	// Clinical is the clinical-trial layout returned by /clinical_scrap.
	Clinical Schema = "clinical"
)

var generalFields = []string{
	FieldPubmedLink,
	FieldTitle,
	FieldDate,
	FieldAbstract,
	FieldAuthors,
	FieldAffiliation,
	FieldAuthorEmail,
	FieldPMCID,
	FieldDOI,
	FieldFullTextLinks,
	FieldMeshTerms,
	FieldPublicationTypes,
}

var clinicalFields = []string{
	FieldNCTNumber,
	FieldConditions,
	FieldInterventions,
	FieldOutcomeMeasures,
}

// Fields returns the schema's field names in display order. The clinical
// layout is the general one plus the trial fields.
func (s Schema) Fields() []string {
	out := append([]string(nil), generalFields...)
	if s == Clinical {
		out = append(out, clinicalFields...)
	}
	return out
}

// Valid reports whether s is a known schema.
func (s Schema) Valid() bool {
	return s == General || s == Clinical
}

// ParseSchema converts a name into a Schema.
func ParseSchema(name string) (Schema, error) {
	s := Schema(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown schema %q", name)
	}
	return s, nil
}

var fieldTitles = map[string]string{
	FieldPubmedLink:       "Pubmed link",
	FieldTitle:            "Title",
	FieldDate:             "Date",
	FieldAbstract:         "Abstract",
	FieldAuthors:          "Authors",
	FieldAffiliation:      "Affiliation",
	FieldAuthorEmail:      "Author email",
	FieldPMCID:            "PMCID",
	FieldDOI:              "DOI",
	FieldFullTextLinks:    "Full text links",
	FieldMeshTerms:        "MeSH terms",
	FieldPublicationTypes: "Publication types",
	FieldNCTNumber:        "NCT number",
	FieldConditions:       "Conditions",
	FieldInterventions:    "Interventions",
	FieldOutcomeMeasures:  "Outcome measures",
}

// Title returns the display heading for a field. Unknown fields are shown by
// their raw name.
func Title(field string) string {
	if t, ok := fieldTitles[field]; ok {
		return t
	}
	return field
}
