package web

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/henrybloomingdale/litscrape/internal/format"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/scrapeapi"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// pageData is everything indexTemplate renders.
type pageData struct {
	Busy       bool
	Notice     *ui.Notice
	TriggerKey string

	HasTable   bool
	Schema     records.Schema
	Count      int
	Columns    []columnView
	Rows       []rowView
	Page       int
	TotalPages int
	Sort       string
	Order      string
	Query      string

	Export       controlView
	DownloadPDF  controlView
	ExtractTexts controlView

	Modal *modalView
}

type columnView struct {
	Title  string
	Width  string
	Href   template.URL
	Active bool
	Order  string
}

type rowView struct {
	Index int
	Cells []cellView
}

type cellView struct {
	Field     string
	HTML      template.HTML
	Clickable bool
}

type controlView struct {
	Shown   bool
	Enabled bool
}

type modalView struct {
	Index  int
	Fields []modalField
}

type modalField struct {
	Field string
	Title string
	Body  template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	if snap.Notice != nil {
		snap.Notice = s.state.TakeNotice()
	}
	tq := parseTableQuery(r.URL.Query().Get("page"), r.URL.Query().Get("sort"), r.URL.Query().Get("order"))

	data := pageData{
		Busy:         snap.Busy,
		Notice:       snap.Notice,
		TriggerKey:   s.suggester.TriggerKey(),
		HasTable:     snap.HasTable,
		Sort:         tq.Sort,
		Order:        tq.Order,
		Export:       controlView{Shown: snap.Revealed[ui.ControlExport], Enabled: snap.Enabled[ui.ControlExport]},
		DownloadPDF:  controlView{Shown: snap.Revealed[ui.ControlDownloadPDF], Enabled: true},
		ExtractTexts: controlView{Shown: snap.Revealed[ui.ControlExtractTexts], Enabled: true},
	}

	if snap.HasTable {
		t := snap.Table
		rows := sortRows(t, tq.Sort, tq.Order)
		pageRows, page, totalPages := paginate(rows, tq.Page, s.pageSize)

		data.Schema = t.Schema
		data.Count = t.Len()
		data.Page = page
		data.TotalPages = totalPages
		data.Query = tableParams(page, tq.Sort, tq.Order).Encode()
		data.Columns = columnViews(t, tq)
		data.Rows = make([]rowView, len(pageRows))
		for i, row := range pageRows {
			rv := rowView{Index: row.Index, Cells: make([]cellView, len(row.Cells))}
			for j, c := range row.Cells {
				// Cell HTML is escaped by the renderer.
				rv.Cells[j] = cellView{Field: c.Field, HTML: template.HTML(c.HTML), Clickable: c.Clickable}
			}
			data.Rows[i] = rv
		}
	}

	if snap.ModalOpen {
		data.Modal = newModalView(snap.Modal)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		s.logger.Error().Err(err).Msg("rendering page")
	}
}

func columnViews(t ui.Table, tq tableQuery) []columnView {
	cols := make([]columnView, len(t.Columns))
	for i, c := range t.Columns {
		key := c.Field
		if key == "" {
			key = numberSortKey
		}
		active := key == tq.Sort
		next := OrderAsc
		if active && tq.Order == OrderAsc {
			next = OrderDesc
		}
		cols[i] = columnView{
			Title:  c.Title,
			Width:  c.Width,
			Href:   template.URL("/?" + tableParams(1, key, next).Encode()),
			Active: active,
			Order:  tq.Order,
		}
	}
	return cols
}

func newModalView(d ui.Detail) *modalView {
	mv := &modalView{Index: d.Index, Fields: make([]modalField, 0, len(d.Fields))}
	for _, f := range d.Fields {
		var body string
		switch {
		case len(f.Anchors) > 0:
			body = format.AnchorsHTML(f.Anchors)
		case f.Href != "":
			body = format.Anchor{Href: f.Href, Text: f.Text, Target: format.NewTab}.HTML()
		default:
			body = format.EscapeAndBreak(f.Text)
		}
		mv.Fields = append(mv.Fields, modalField{Field: f.Field, Title: f.Title, Body: template.HTML(body)})
	}
	return mv
}

func tableParams(page int, sortKey, order string) url.Values {
	v := url.Values{}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if sortKey != "" {
		v.Set("sort", sortKey)
		v.Set("order", order)
	}
	return v
}

// detached keeps a running scrape alive when the browser goes away.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := scrapeapi.GeneralQuery{Keyword: r.PostFormValue("keyword")}
	if err := s.general.Submit(detached(r), q); err != nil {
		s.logger.Debug().Err(err).Msg("general search did not complete")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClinical(w http.ResponseWriter, r *http.Request) {
	q := scrapeapi.ClinicalQuery{
		ConditionsDisease: r.PostFormValue("conditions_disease"),
		OtherTerms:        r.PostFormValue("other_terms"),
	}
	if err := s.clinical.Submit(detached(r), q); err != nil {
		s.logger.Debug().Err(err).Msg("clinical search did not complete")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err == nil {
		s.viewer.Show(index)
	}
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

func (s *Server) handleCloseModal(w http.ResponseWriter, r *http.Request) {
	s.state.CloseModal()
	http.Redirect(w, r, backTo(r), http.StatusSeeOther)
}

// backTo returns the page URL carrying the request's table parameters.
func backTo(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return "/"
	}
	return "/?" + r.URL.RawQuery
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.triggers.ExportExcel() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, s.state.TakeNavigation(), http.StatusFound)
}

func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	_ = s.triggers.DownloadPDF(detached(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExtractTexts(w http.ResponseWriter, r *http.Request) {
	_ = s.triggers.ExtractTexts(detached(r))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
	Bound       bool     `json:"bound"`
}

// handleSuggestions forwards a key press. key defaults to the trigger key so
// plain ?term= requests always fetch.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if !r.URL.Query().Has("key") {
		key = s.suggester.TriggerKey()
	}
	if err := s.suggester.OnKey(r.Context(), key, r.URL.Query().Get("term")); err != nil {
		writeError(w, http.StatusBadGateway, "fetching suggestions failed")
		return
	}
	snap := s.state.Snapshot()
	items := snap.Suggestions
	if items == nil {
		items = []string{}
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: items, Bound: snap.SuggestionsBound})
}

type healthResponse struct {
	Status  string `json:"status"`
	Busy    bool   `json:"busy"`
	Results int    `json:"results"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Busy:    s.state.Snapshot().Busy,
		Results: s.store.Len(),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
