package termview

import (
	"fmt"
	"io"
	"sync"

	"github.com/henrybloomingdale/litscrape/internal/ui"
)

// View is the terminal implementation of ui.View. Tables and details go to
// out; progress, hints and notices go to errOut. In structured modes nothing
// is printed to out so the caller can emit a single document.
type View struct {
	out    io.Writer
	errOut io.Writer
	cfg    OutputConfig

	mu          sync.Mutex
	enabled     map[ui.Control]bool
	suggestions []string
	navigated   string
	notices     []ui.Notice
}

var _ ui.View = (*View)(nil)

// NewView creates a terminal view.
func NewView(out, errOut io.Writer, cfg OutputConfig) *View {
	return &View{out: out, errOut: errOut, cfg: cfg, enabled: map[ui.Control]bool{}}
}

func (v *View) SetBusy(on bool) {
	if on && v.cfg.Human {
		fmt.Fprintln(v.errOut, dim.Render("⏳ Waiting for the scraping server..."))
	}
}

func (v *View) Notify(n ui.Notice) {
	v.mu.Lock()
	v.notices = append(v.notices, n)
	v.mu.Unlock()

	prefix := "Error:"
	if n.Kind == ui.NoticePrompt {
		prefix = "Input required:"
	}
	if v.cfg.Human {
		fmt.Fprintln(v.errOut, red.Render("⚠ "+n.Message))
		return
	}
	fmt.Fprintf(v.errOut, "%s %s\n", prefix, n.Message)
}

func (v *View) ShowTable(t ui.Table) {
	if v.cfg.Structured() {
		return
	}
	if v.cfg.Human {
		_ = formatTableHuman(v.out, t)
		return
	}
	_ = formatTablePlain(v.out, t)
}

func (v *View) ShowModal(d ui.Detail) {
	if v.cfg.Structured() {
		return
	}
	fmt.Fprintln(v.out)
	_ = FormatDetail(v.out, d, v.cfg)
}

func (v *View) CloseModal() {}

func (v *View) SetEnabled(c ui.Control, enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enabled[c] = enabled
}

func (v *View) Reveal(c ui.Control) {
	if !v.cfg.Human {
		return
	}
	var hint string
	switch c {
	case ui.ControlExport:
		if !v.Enabled(c) {
			return
		}
		hint = "💾 Use --download DIR to save the Excel export"
	case ui.ControlDownloadPDF:
		hint = "📄 Run 'litscrape download-pdf' to fetch the PDFs"
	case ui.ControlExtractTexts:
		hint = "📝 Then 'litscrape extract-texts' to extract their text"
	}
	fmt.Fprintln(v.errOut, dim.Render(hint))
}

func (v *View) DetachSuggestions() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions = nil
}

func (v *View) AttachSuggestions(items []string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.suggestions = append([]string(nil), items...)
}

func (v *View) Navigate(url string) {
	v.mu.Lock()
	v.navigated = url
	v.mu.Unlock()
	if v.cfg.Structured() {
		return
	}
	if v.cfg.Human {
		fmt.Fprintf(v.errOut, "%s %s\n", labelStyle.Render("Export:"), cyan.Render(url))
		return
	}
	fmt.Fprintf(v.errOut, "Export: %s\n", url)
}

// Enabled reports whether a control was last enabled.
func (v *View) Enabled(c ui.Control) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.enabled[c]
}

// Suggestions returns the currently bound suggestion list.
func (v *View) Suggestions() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.suggestions...)
}

// Navigated returns the last download URL.
func (v *View) Navigated() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.navigated
}

// Notices returns every notice shown so far.
func (v *View) Notices() []ui.Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]ui.Notice(nil), v.notices...)
}
