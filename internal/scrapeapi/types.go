// Package scrapeapi provides a client for the literature scraping server's
// HTTP endpoints.
package scrapeapi

import (
	"errors"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/henrybloomingdale/litscrape/internal/records"
)

// Query is a search submission. Implementations are GeneralQuery and
// ClinicalQuery.
type Query interface {
	// Schema is the result schema the server answers with.
	Schema() records.Schema
	// Endpoint is the server path the query is posted to.
	Endpoint() string
	// Values is the form body, sent exactly as entered.
	Values() url.Values
	// Validate rejects queries whose required fields are empty or whitespace.
	Validate() error
}

// GeneralQuery searches PubMed by keyword.
type GeneralQuery struct {
	Keyword string `form:"keyword" validate:"required"`
}

func (GeneralQuery) Schema() records.Schema { return records.General }
func (GeneralQuery) Endpoint() string       { return EndpointScrap }

func (q GeneralQuery) Values() url.Values {
	return url.Values{"keyword": {q.Keyword}}
}

func (q GeneralQuery) Validate() error {
	return validate.Struct(GeneralQuery{Keyword: strings.TrimSpace(q.Keyword)})
}

// ClinicalQuery searches clinical trials. At least one field must be set.
type ClinicalQuery struct {
	ConditionsDisease string `form:"conditions_disease" validate:"required_without=OtherTerms"`
	OtherTerms        string `form:"other_terms" validate:"required_without=ConditionsDisease"`
}

func (ClinicalQuery) Schema() records.Schema { return records.Clinical }
func (ClinicalQuery) Endpoint() string       { return EndpointClinicalScrap }

func (q ClinicalQuery) Values() url.Values {
	return url.Values{
		"conditions_disease": {q.ConditionsDisease},
		"other_terms":        {q.OtherTerms},
	}
}

func (q ClinicalQuery) Validate() error {
	return validate.Struct(ClinicalQuery{
		ConditionsDisease: strings.TrimSpace(q.ConditionsDisease),
		OtherTerms:        strings.TrimSpace(q.OtherTerms),
	})
}

// Response is the payload of /scrap and /clinical_scrap.
type Response struct {
	ExcelFile string            `json:"excel_file"`
	Results   records.ResultSet `json:"results"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// validate reports form field names so errors line up with the inputs.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}()

// FirstInvalidField returns the form field name of the first failure in a
// Validate error, or "" when err carries no field information.
func FirstInvalidField(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ""
	}
	return verrs[0].Field()
}
