package termview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/henrybloomingdale/litscrape/internal/format"
	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// --- Styles ---

var (
	cyan       = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	bold       = lipgloss.NewStyle().Bold(true)
	dim        = lipgloss.NewStyle().Faint(true)
	yellow     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	red        = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	green      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 1)
)

// terminalColumns is the subset of each schema that fits a terminal table.
var terminalColumns = map[records.Schema][]string{
	records.General:  {records.FieldTitle, records.FieldDate, records.FieldAuthors, records.FieldDOI},
	records.Clinical: {records.FieldNCTNumber, records.FieldTitle, records.FieldConditions, records.FieldInterventions},
}

// columnWidth caps terminal cells tighter than the page does.
const columnWidth = 50

// abstractPreview is how much abstract human mode shows without --full.
const abstractPreview = 500

// --- Table ---

func formatTableHuman(w io.Writer, t ui.Table) error {
	if t.Len() == 0 {
		fmt.Fprintln(w, "🔬 No results found.")
		return nil
	}

	kind := "articles"
	if t.Schema == records.Clinical {
		kind = "clinical trials"
	}
	fmt.Fprintln(w, bold.Render(fmt.Sprintf("🔬 Found %d %s", t.Len(), kind)))
	fmt.Fprintln(w)

	fields := terminalColumns[t.Schema]
	headers := []string{"#"}
	for _, f := range fields {
		headers = append(headers, records.Title(f))
	}

	rows := make([][]string, 0, t.Len())
	for _, row := range t.Rows {
		r := []string{cyan.Render(row.Label)}
		for _, f := range fields {
			text := format.Truncate(cellText(row, f), columnWidth)
			if f == records.FieldTitle {
				text = bold.Render(text)
			}
			r = append(r, text)
		}
		rows = append(rows, r)
	}

	tbl := table.New().
		Headers(headers...).
		Rows(rows...).
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, tbl.Render())
	return nil
}

// --- Detail ---

func formatDetailHuman(w io.Writer, d ui.Detail, full bool) error {
	title, _ := d.Get(records.FieldTitle)
	link, _ := d.Get(records.FieldPubmedLink)
	date, _ := d.Get(records.FieldDate)

	meta := cyan.Render(fmt.Sprintf("#%d", d.Index+1))
	if link.Text != "" {
		meta += dim.Render(" · ") + cyan.Render(link.Text)
	}
	if date.Text != "" {
		meta += dim.Render(" · ") + date.Text
	}
	fmt.Fprintln(w, boxStyle.Render(bold.Render(title.Text)+"\n"+meta))
	fmt.Fprintln(w)

	for _, f := range d.Fields {
		switch f.Field {
		case records.FieldTitle, records.FieldPubmedLink, records.FieldDate, records.FieldAbstract:
			continue
		}
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		switch {
		case len(f.Anchors) > 0:
			fmt.Fprintf(w, "  %s\n", labelStyle.Render(f.Title+":"))
			for _, a := range f.Anchors {
				fmt.Fprintf(w, "    %s\n", cyan.Render(a.Href))
			}
		case f.Field == records.FieldDOI:
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(f.Title+":"), yellow.Render(f.Text))
		default:
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(f.Title+":"), oneLine(f.Text))
		}
	}

	abstract, _ := d.Get(records.FieldAbstract)
	if abstract.Text != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", labelStyle.Render("Abstract:"))
		if !full && len([]rune(abstract.Text)) > abstractPreview {
			fmt.Fprintf(w, "  %s\n", format.Truncate(abstract.Text, abstractPreview))
			fmt.Fprintf(w, "  %s\n", dim.Render("[use --full for complete abstract]"))
		} else {
			fmt.Fprintf(w, "  %s\n", abstract.Text)
		}
	}
	return nil
}

// oneLine joins a multi-line value for a label row.
func oneLine(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Trim(strings.TrimSpace(l), ",")
		if l != "" {
			out = append(out, strings.TrimSpace(l))
		}
	}
	return strings.Join(out, "; ")
}
