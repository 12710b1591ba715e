// Package termview renders litscrape results in a terminal and writes the
// structured and file exports.
package termview

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/render"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// OutputConfig controls which output mode(s) are active.
type OutputConfig struct {
	JSON    bool   // Structured JSON
	YAML    bool   // Structured YAML
	Human   bool   // Rich terminal output with color
	Full    bool   // Show full abstract (human mode)
	CSVFile string // Export results to this CSV path (works alongside any mode)
	RISFile string // Export results to this RIS path (works alongside any mode)
}

// Structured reports whether output is a machine-readable document.
func (c OutputConfig) Structured() bool { return c.JSON || c.YAML }

// Payload is the structured form of a search result.
type Payload struct {
	Schema    records.Schema    `json:"schema" yaml:"schema"`
	ExcelFile string            `json:"excel_file,omitempty" yaml:"excel_file,omitempty"`
	Count     int               `json:"count" yaml:"count"`
	Results   records.ResultSet `json:"results" yaml:"results"`
}

// NewPayload captures the store's current state.
func NewPayload(store *records.Store, schema records.Schema) Payload {
	results := store.Results()
	if results == nil {
		results = records.ResultSet{}
	}
	return Payload{
		Schema:    schema,
		ExcelFile: store.Artifact(),
		Count:     len(results),
		Results:   results,
	}
}

// Export writes the CSV and RIS files requested in cfg.
func Export(p Payload, cfg OutputConfig) error {
	if cfg.CSVFile != "" {
		if err := writeResultsCSV(cfg.CSVFile, p.Schema, p.Results); err != nil {
			return fmt.Errorf("CSV export failed: %w", err)
		}
	}
	if cfg.RISFile != "" {
		if err := writeResultsRIS(cfg.RISFile, p.Schema, p.Results); err != nil {
			return fmt.Errorf("RIS export failed: %w", err)
		}
	}
	return nil
}

// FormatResults writes a search result and any requested file exports.
func FormatResults(w io.Writer, p Payload, cfg OutputConfig) error {
	if err := Export(p, cfg); err != nil {
		return err
	}
	if cfg.JSON {
		return writeJSON(w, p)
	}
	if cfg.YAML {
		return writeYAML(w, p)
	}
	t := render.Table(p.Results, p.Schema)
	if cfg.Human {
		return formatTableHuman(w, t)
	}
	return formatTablePlain(w, t)
}

// FormatDetail writes one record's detail.
func FormatDetail(w io.Writer, d ui.Detail, cfg OutputConfig) error {
	if cfg.Structured() {
		doc := detailDoc(d)
		if cfg.JSON {
			return writeJSON(w, doc)
		}
		return writeYAML(w, doc)
	}
	if cfg.Human {
		return formatDetailHuman(w, d, cfg.Full)
	}
	return formatDetailPlain(w, d)
}

// FormatSuggestions writes an autocomplete list.
func FormatSuggestions(w io.Writer, items []string, cfg OutputConfig) error {
	if items == nil {
		items = []string{}
	}
	doc := map[string][]string{"suggestions": items}
	if cfg.JSON {
		return writeJSON(w, doc)
	}
	if cfg.YAML {
		return writeYAML(w, doc)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No suggestions.")
		return nil
	}
	for _, s := range items {
		if cfg.Human {
			fmt.Fprintf(w, "  %s %s\n", dim.Render("›"), s)
		} else {
			fmt.Fprintln(w, s)
		}
	}
	return nil
}

// FormatAction reports a completed server-side action.
func FormatAction(w io.Writer, action, message string, cfg OutputConfig) error {
	doc := map[string]string{"action": action, "status": "ok"}
	switch {
	case cfg.JSON:
		return writeJSON(w, doc)
	case cfg.YAML:
		return writeYAML(w, doc)
	case cfg.Human:
		fmt.Fprintln(w, green.Render("✓ "+message))
	default:
		fmt.Fprintln(w, message)
	}
	return nil
}

// detailDoc flattens a detail into field -> value for structured output.
func detailDoc(d ui.Detail) map[string]any {
	fields := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		fields[f.Field] = f.Text
	}
	return map[string]any{
		"index":  d.Index,
		"schema": d.Schema,
		"fields": fields,
	}
}

// --- Plain text formatters (default) ---

func formatTablePlain(w io.Writer, t ui.Table) error {
	if t.Len() == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "Found %d results\n\n", t.Len())
	for _, row := range t.Rows {
		title := cellText(row, records.FieldTitle)
		if date := cellText(row, records.FieldDate); date != "" {
			title += " (" + date + ")"
		}
		fmt.Fprintf(w, "  %s. %s\n", row.Label, title)
		if nct := cellText(row, records.FieldNCTNumber); nct != "" {
			fmt.Fprintf(w, "     NCT: %s\n", nct)
		}
		if link := cellText(row, records.FieldPubmedLink); link != "" {
			fmt.Fprintf(w, "     %s\n", link)
		}
	}
	return nil
}

func formatDetailPlain(w io.Writer, d ui.Detail) error {
	for _, f := range d.Fields {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		if strings.Contains(f.Text, "\n") || f.Field == records.FieldAbstract {
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%s:\n", f.Title)
			if len(f.Anchors) > 0 {
				for _, a := range f.Anchors {
					fmt.Fprintf(w, "  %s\n", a.Href)
				}
				continue
			}
			fmt.Fprintln(w, f.Text)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", f.Title, f.Text)
	}
	return nil
}

func cellText(row ui.Row, field string) string {
	for _, c := range row.Cells {
		if c.Field == field {
			return c.Text
		}
	}
	return ""
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
