package termview

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/henrybloomingdale/litscrape/internal/records"
)

func TestWriteResultsRIS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.ris")

	results := records.ResultSet{
		{
			records.FieldPubmedLink:       "https://pubmed.ncbi.nlm.nih.gov/38000001/",
			records.FieldTitle:            "Testing RIS Export",
			records.FieldDate:             "2026 Mar 3",
			records.FieldAbstract:         "Line one.\nLine two.",
			records.FieldAuthors:          "Jane Smith, \nJohn Roe",
			records.FieldDOI:              "10.1000/example",
			records.FieldMeshTerms:        "Humans\nAsthma",
			records.FieldFullTextLinks:    "https://example.org/a.pdf,\n https://example.org/b",
			records.FieldPublicationTypes: "Review",
		},
		{records.FieldTitle: "Second"},
	}

	if err := writeResultsRIS(path, records.General, results); err != nil {
		t.Fatalf("unexpected error writing RIS: %v", err)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read RIS output: %v", err)
	}
	out := string(body)

	expected := []string{
		"TY  - JOUR",
		"TI  - Testing RIS Export",
		"AU  - Jane Smith",
		"AU  - John Roe",
		"PY  - 2026",
		"DA  - 2026 Mar 3",
		"DO  - 10.1000/example",
		"AB  - Line one. Line two.",
		"KW  - Humans",
		"KW  - Asthma",
		"M3  - Review",
		"ID  - PMID:38000001",
		"UR  - https://pubmed.ncbi.nlm.nih.gov/38000001/",
		"L2  - https://example.org/a.pdf",
		"L2  - https://example.org/b",
		"ER  -",
	}
	for _, line := range expected {
		if !strings.Contains(out, line+"\n") {
			t.Errorf("expected RIS output to contain %q\nOutput:\n%s", line, out)
		}
	}
	if got := strings.Count(out, "ER  -"); got != 2 {
		t.Errorf("expected 2 records, got %d", got)
	}
	if strings.Contains(out, "PY  - \n") {
		t.Error("empty tags must be omitted")
	}
}

func TestWriteResultsRIS_Clinical(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.ris")
	results := records.ResultSet{{
		records.FieldTitle:         "Metformin trial",
		records.FieldNCTNumber:     "NCT01234567",
		records.FieldInterventions: "Metformin",
	}}
	if err := writeResultsRIS(path, records.Clinical, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body, _ := os.ReadFile(path)
	out := string(body)
	for _, line := range []string{"TY  - CTLG", "AN  - NCT01234567", "N1  - Metformin"} {
		if !strings.Contains(out, line) {
			t.Errorf("expected %q in output:\n%s", line, out)
		}
	}
}

func TestWriteResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := records.ResultSet{
		{records.FieldTitle: "A, with comma", records.FieldAbstract: "multi\nline"},
	}
	if err := writeResultsCSV(path, records.Clinical, results); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if len(rows[0]) != len(records.Clinical.Fields()) {
		t.Errorf("expected %d columns, got %d", len(records.Clinical.Fields()), len(rows[0]))
	}
	if rows[1][1] != "A, with comma" || rows[1][3] != "multi\nline" {
		t.Errorf("unexpected row %v", rows[1])
	}
}
