package web

import (
	"html/template"
	"strconv"
	"strings"
)

var funcMap = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"subtract": func(a, b int) int {
		return a - b
	},
	// pageHref links to page p keeping the sort.
	"pageHref": func(p int, sortKey, order string) template.URL {
		return template.URL("/?" + tableParams(p, sortKey, order).Encode())
	},
	// withQuery appends the table parameters to path.
	"withQuery": func(path, query string) template.URL {
		if query == "" {
			return template.URL(path)
		}
		return template.URL(path + "?" + query)
	},
	"recordPath": func(index int) string {
		return "/records/" + strconv.Itoa(index)
	},
	"fieldID": fieldID,
}

// fieldID turns a field name into an element id fragment: "Pubmed link"
// becomes "pubmed-link".
func fieldID(field string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(field)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
			dash = false
		case !dash && sb.Len() > 0:
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(sb.String(), "-")
}

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    {{if .Busy}}<meta http-equiv="refresh" content="2">{{end}}
    <title>Literature Scraper</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2937; }
        form.search { display: inline-block; margin-right: 2rem; vertical-align: top; }
        input[type=text] { width: 280px; padding: 0.25rem 0.5rem; }
        .notice { padding: 0.5rem 1rem; margin: 1rem 0; border-radius: 0.25rem; }
        .notice-prompt { background: #fef3c7; }
        .notice-error { background: #fee2e2; }
        #busy { margin: 1rem 0; font-style: italic; }
        .actions { margin: 1rem 0; }
        .actions form { display: inline; }
        table { border-collapse: collapse; width: 100%; font-size: 0.875rem; }
        th, td { border: 1px solid #e5e7eb; padding: 0.25rem 0.5rem; vertical-align: top; text-align: left; }
        th a { color: inherit; text-decoration: none; }
        td a.row-link { color: inherit; text-decoration: none; cursor: pointer; }
        .pager { margin: 1rem 0; }
        .modal-backdrop { position: fixed; inset: 0; background: rgba(0,0,0,0.4); }
        .modal { position: fixed; top: 5%; left: 10%; right: 10%; bottom: 5%; overflow: auto; background: #fff; padding: 1.5rem; border-radius: 0.5rem; }
        .modal dt { font-weight: 600; margin-top: 0.75rem; }
    </style>
</head>
<body>
    <h1>Literature Scraper</h1>

    <form class="search" id="search-form" method="post" action="/search">
        <label for="keyword">Keyword</label>
        <input type="text" id="keyword" name="keyword" list="keyword-suggestions" autocomplete="off">
        <datalist id="keyword-suggestions"></datalist>
        <button type="submit" {{if .Busy}}disabled{{end}}>Search</button>
    </form>

    <form class="search" id="clinical-form" method="post" action="/clinical">
        <label for="conditions_disease">Conditions/disease</label>
        <input type="text" id="conditions_disease" name="conditions_disease">
        <label for="other_terms">Other terms</label>
        <input type="text" id="other_terms" name="other_terms">
        <button type="submit" {{if .Busy}}disabled{{end}}>Search trials</button>
    </form>

    {{with .Notice}}
    <div class="notice notice-{{.Kind}}" role="alert">{{.Message}}</div>
    {{end}}

    {{if .Busy}}<div id="busy">Searching...</div>{{end}}

    <div class="actions">
        {{if .Export.Shown}}
        <form method="get" action="/export"><button id="export" type="submit" {{if not .Export.Enabled}}disabled{{end}}>Export to Excel</button></form>
        {{end}}
        {{if .DownloadPDF.Shown}}
        <form method="post" action="/download-pdf"><button id="download-pdf" type="submit" {{if .Busy}}disabled{{end}}>Download PDFs</button></form>
        {{end}}
        {{if .ExtractTexts.Shown}}
        <form method="post" action="/extract-texts"><button id="extract-texts" type="submit" {{if .Busy}}disabled{{end}}>Extract texts</button></form>
        {{end}}
    </div>

    {{if .HasTable}}
    <p id="count">{{.Count}} results</p>
    <table id="results" data-schema="{{.Schema}}">
        <thead>
            <tr>
                {{range .Columns}}
                <th{{if .Width}} style="width: {{.Width}}"{{end}}><a href="{{.Href}}">{{.Title}}{{if .Active}}{{if eq .Order "desc"}} &#9660;{{else}} &#9650;{{end}}{{end}}</a></th>
                {{end}}
            </tr>
        </thead>
        <tbody>
            {{range .Rows}}
            {{$index := .Index}}
            <tr data-index="{{.Index}}">
                {{range .Cells}}
                <td{{if .Field}} data-field="{{.Field}}"{{end}}>{{if .Clickable}}<a class="row-link" href="{{withQuery (recordPath $index) $.Query}}">{{.HTML}}</a>{{else}}{{.HTML}}{{end}}</td>
                {{end}}
            </tr>
            {{end}}
        </tbody>
    </table>

    {{if gt .TotalPages 1}}
    <div class="pager">
        {{if gt .Page 1}}<a id="prev" href="{{pageHref (subtract .Page 1) .Sort .Order}}">Previous</a>{{end}}
        <span id="page">Page {{.Page}} of {{.TotalPages}}</span>
        {{if lt .Page .TotalPages}}<a id="next" href="{{pageHref (add .Page 1) .Sort .Order}}">Next</a>{{end}}
    </div>
    {{end}}
    {{end}}

    {{with .Modal}}
    <div class="modal-backdrop"></div>
    <div class="modal" id="detail-modal" data-index="{{.Index}}">
        <form method="post" action="{{withQuery "/modal/close" $.Query}}"><button type="submit" id="close-modal">Close</button></form>
        <dl>
            {{range .Fields}}
            <dt>{{.Title}}</dt>
            <dd id="detail-{{fieldID .Field}}">{{.Body}}</dd>
            {{end}}
        </dl>
    </div>
    {{end}}

    <script>
        const triggerKey = {{.TriggerKey}};
        const keyword = document.getElementById('keyword');
        const list = document.getElementById('keyword-suggestions');
        keyword.addEventListener('keyup', function (e) {
            if (e.key !== triggerKey) {
                return;
            }
            fetch('/suggestions?term=' + encodeURIComponent(keyword.value))
                .then(function (res) { return res.json(); })
                .then(function (data) {
                    list.innerHTML = '';
                    (data.suggestions || []).forEach(function (s) {
                        const opt = document.createElement('option');
                        opt.value = s;
                        list.appendChild(opt);
                    });
                })
                .catch(function () {});
        });
    </script>
</body>
</html>
`
