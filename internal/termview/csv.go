package termview

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/henrybloomingdale/litscrape/internal/records"
)

// writeResultsCSV exports records with one column per schema field.
func writeResultsCSV(path string, schema records.Schema, results records.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer f.Close()

	fields := schema.Fields()
	w := csv.NewWriter(f)
	if err := w.Write(fields); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	row := make([]string, len(fields))
	for _, r := range results {
		for i, field := range fields {
			row[i] = r.Get(field)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
