package termview

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/henrybloomingdale/litscrape/internal/format"
	"github.com/henrybloomingdale/litscrape/internal/records"
)

var (
	yearPattern = regexp.MustCompile(`\b(1[89]|20)\d{2}\b`)
	pmidPattern = regexp.MustCompile(`/(\d+)/?$`)
)

// writeResultsRIS exports records to RIS format for citation managers.
func writeResultsRIS(path string, schema records.Schema, results records.ResultSet) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating RIS file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, r := range results {
		if schema == records.Clinical {
			writeRISTag(w, "TY", "CTLG")
		} else {
			writeRISTag(w, "TY", "JOUR")
		}
		writeRISTag(w, "TI", r.Get(records.FieldTitle))

		for _, au := range splitList(r.Get(records.FieldAuthors)) {
			writeRISTag(w, "AU", au)
		}

		writeRISTag(w, "PY", yearPattern.FindString(r.Get(records.FieldDate)))
		writeRISTag(w, "DA", r.Get(records.FieldDate))
		writeRISTag(w, "AD", r.Get(records.FieldAffiliation))
		writeRISTag(w, "DO", r.Get(records.FieldDOI))
		writeRISTag(w, "AB", r.Get(records.FieldAbstract))
		for _, kw := range splitLines(r.Get(records.FieldMeshTerms)) {
			writeRISTag(w, "KW", kw)
		}
		writeRISTag(w, "M3", r.Get(records.FieldPublicationTypes))

		link := r.Get(records.FieldPubmedLink)
		if m := pmidPattern.FindStringSubmatch(link); m != nil {
			writeRISTag(w, "ID", "PMID:"+m[1])
		}
		writeRISTag(w, "UR", link)
		for _, a := range format.LinksToAnchors(r.Get(records.FieldFullTextLinks)) {
			writeRISTag(w, "L2", a.Href)
		}
		if pmcid := r.Get(records.FieldPMCID); pmcid != "" {
			writeRISTag(w, "C2", pmcid)
		}

		if schema == records.Clinical {
			writeRISTag(w, "AN", r.Get(records.FieldNCTNumber))
			writeRISTag(w, "N1", r.Get(records.FieldInterventions))
		}
		writeRISTag(w, "ER", "")

		if i < len(results)-1 {
			if _, err := w.WriteString("\n"); err != nil {
				return fmt.Errorf("writing RIS separator: %w", err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing RIS output: %w", err)
	}

	return nil
}

func writeRISTag(w *bufio.Writer, tag, value string) {
	if tag == "" {
		return
	}
	if tag != "ER" && strings.TrimSpace(value) == "" {
		return
	}
	if tag == "ER" {
		_, _ = w.WriteString("ER  -\n")
		return
	}
	_, _ = w.WriteString(tag + "  - " + sanitizeRISValue(value) + "\n")
}

func sanitizeRISValue(v string) string {
	v = strings.ReplaceAll(v, "\r\n", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "\r", " ")
	return strings.TrimSpace(v)
}

// splitList splits the server's ", \n" joined author list.
func splitList(s string) []string {
	var out []string
	for _, line := range splitLines(s) {
		for _, part := range strings.Split(line, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.Trim(strings.TrimSpace(line), ","); line != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}
