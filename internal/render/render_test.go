package render

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henrybloomingdale/litscrape/internal/records"
	"github.com/henrybloomingdale/litscrape/internal/ui"
)

func sampleSet() records.ResultSet {
	return records.ResultSet{
		{
			records.FieldPubmedLink:    "https://pubmed.ncbi.nlm.nih.gov/1/",
			records.FieldTitle:         "First <b>title</b>",
			records.FieldAbstract:      "Line one\nLine two",
			records.FieldAuthorEmail:   "a@example.org",
			records.FieldFullTextLinks: "https://a.example/x.pdf,\n https://b.example/y",
		},
		{
			records.FieldTitle: "Second title",
		},
	}
}

func parseCell(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<div>" + html + "</div>"))
	require.NoError(t, err)
	return doc
}

func cellFor(t *testing.T, row ui.Row, field string) ui.Cell {
	t.Helper()
	for _, c := range row.Cells {
		if c.Field == field {
			return c
		}
	}
	t.Fatalf("no cell for field %q", field)
	return ui.Cell{}
}

func TestTable_HeaderAndRows(t *testing.T) {
	table := Table(sampleSet(), records.General)

	require.Len(t, table.Columns, len(records.General.Fields())+1)
	assert.Equal(t, NumberColumnTitle, table.Columns[0].Title)
	assert.Equal(t, records.FieldPubmedLink, table.Columns[1].Field)

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1", table.Rows[0].Label)
	assert.Equal(t, "2", table.Rows[1].Label)
	assert.Equal(t, 0, table.Rows[0].Index)
	assert.Equal(t, 1, table.Rows[1].Index)
	for _, row := range table.Rows {
		assert.Len(t, row.Cells, len(table.Columns))
	}
}

func TestTable_WidthHints(t *testing.T) {
	table := Table(nil, records.Clinical)

	got := make([]string, 0, 4)
	for _, c := range table.Columns[:4] {
		got = append(got, c.Width)
	}
	if diff := cmp.Diff([]string{"4%", "12%", "24%", ""}, got); diff != "" {
		t.Errorf("width hints mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, table.Rows)
	assert.Len(t, table.Columns, len(records.Clinical.Fields())+1)
}

func TestTable_ClickableCells(t *testing.T) {
	table := Table(sampleSet(), records.Clinical)
	for _, row := range table.Rows {
		for _, c := range row.Cells {
			switch c.Field {
			case records.FieldPubmedLink, records.FieldAuthorEmail, records.FieldFullTextLinks:
				assert.False(t, c.Clickable, c.Field)
			default:
				assert.True(t, c.Clickable, c.Field)
			}
		}
	}
}

func TestCell_Links(t *testing.T) {
	row := Table(sampleSet(), records.General).Rows[0]

	links := parseCell(t, cellFor(t, row, records.FieldFullTextLinks).HTML)
	var hrefs []string
	links.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		hrefs = append(hrefs, href)
		target, _ := s.Attr("target")
		assert.Equal(t, "_blank", target)
	})
	assert.Equal(t, []string{"https://a.example/x.pdf", "https://b.example/y"}, hrefs)

	pubmed := parseCell(t, cellFor(t, row, records.FieldPubmedLink).HTML)
	href, ok := pubmed.Find("a").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/1/", href)

	email := parseCell(t, cellFor(t, row, records.FieldAuthorEmail).HTML)
	href, _ = email.Find("a").Attr("href")
	assert.Equal(t, "mailto:a@example.org", href)
	assert.Equal(t, "a@example.org", email.Find("a").Text())
}

func TestCell_ScriptLinksRenderAsText(t *testing.T) {
	pubmed := Cell(records.FieldPubmedLink, "javascript:alert(document.cookie)")
	assert.NotContains(t, pubmed.HTML, "<a")
	assert.Equal(t, "javascript:alert(document.cookie)", pubmed.HTML)

	links := Cell(records.FieldFullTextLinks, "javascript:alert(2),\n https://a.example/x.pdf")
	doc := parseCell(t, links.HTML)
	require.Equal(t, 1, doc.Find("a").Length())
	assert.Equal(t, "https://a.example/x.pdf", doc.Find("a").AttrOr("href", ""))
	assert.Contains(t, doc.Text(), "javascript:alert(2)")

	email := Cell(records.FieldAuthorEmail, "a@example.org")
	assert.Contains(t, email.HTML, `href="mailto:a@example.org"`)
}

func TestCell_EscapesAndBreaks(t *testing.T) {
	row := Table(sampleSet(), records.General).Rows[0]

	title := cellFor(t, row, records.FieldTitle)
	assert.Equal(t, "First &lt;b&gt;title&lt;/b&gt;", title.HTML)
	assert.Equal(t, "First <b>title</b>", title.Text)

	abstract := cellFor(t, row, records.FieldAbstract)
	assert.Equal(t, "Line one<br>Line two", abstract.HTML)
	assert.Equal(t, "Line one Line two", abstract.Text)
	assert.Equal(t, "Line one\nLine two", abstract.Sort)
}

func TestCell_EmptyValues(t *testing.T) {
	row := Table(sampleSet(), records.General).Rows[1]
	for _, f := range []string{records.FieldPubmedLink, records.FieldAuthorEmail, records.FieldFullTextLinks, records.FieldDOI} {
		c := cellFor(t, row, f)
		assert.Empty(t, c.HTML, f)
		assert.Empty(t, c.Text, f)
	}
}

func TestCell_Truncates(t *testing.T) {
	long := strings.Repeat("x", 500)
	c := Cell(records.FieldTitle, long)
	assert.Len(t, c.Text, Limit(records.FieldTitle))
	assert.True(t, strings.HasSuffix(c.Text, "..."))
	assert.Equal(t, long, c.Sort)

	assert.Equal(t, defaultLimit, Limit("unknown"))
}

type recordingTableView struct {
	tables []ui.Table
}

func (v *recordingTableView) ShowTable(t ui.Table) { v.tables = append(v.tables, t) }

func TestRenderer_ShowReplacesTable(t *testing.T) {
	store := records.NewStore()
	view := &recordingTableView{}
	r := New(store, view)
	assert.Equal(t, records.General, r.Schema())

	store.Replace(sampleSet(), "")
	r.Show(records.General)
	store.Replace(records.ResultSet{{records.FieldNCTNumber: "NCT1"}}, "")
	r.Show(records.Clinical)

	require.Len(t, view.tables, 2)
	assert.Len(t, view.tables[0].Rows, 2)
	assert.Len(t, view.tables[1].Rows, 1)
	assert.Equal(t, records.Clinical, view.tables[1].Schema)
	assert.Equal(t, records.Clinical, r.Schema())
}
