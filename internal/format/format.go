// Package format provides the text helpers used to turn scraped record fields
// into table cells and detail view values.
package format

import (
	"html"
	"net/url"
	"strings"
)

const (
	// Ellipsis is appended to truncated text.
	Ellipsis = "..."
	// LineBreak replaces newlines in HTML output.
	LineBreak = "<br>"
	// NewTab is the anchor target that opens links in a new browsing context.
	NewTab = "_blank"
)

// Truncate cuts s to at most maxLen characters, replacing the tail with "...".
// Strings that already fit are returned unchanged. A maxLen too small to hold
// the ellipsis yields as much of the ellipsis as fits.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= len(Ellipsis) {
		return Ellipsis[:maxLen]
	}
	return string(runes[:maxLen-len(Ellipsis)]) + Ellipsis
}

var newlines = strings.NewReplacer("\r\n", LineBreak, "\r", LineBreak, "\n", LineBreak)

// ReformatNewlines replaces every line ending with an HTML line break.
func ReformatNewlines(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return newlines.Replace(s)
}

// EscapeAndBreak HTML-escapes s and then converts its newlines to breaks.
func EscapeAndBreak(s string) string {
	return ReformatNewlines(html.EscapeString(s))
}

// Anchor is a single clickable link.
type Anchor struct {
	Href   string `json:"href"`
	Text   string `json:"text"`
	Target string `json:"target,omitempty"`
}

// HTML renders the anchor as an escaped <a> element. An href that is not
// SafeHref renders as its escaped text with no link.
func (a Anchor) HTML() string {
	if !SafeHref(a.Href) {
		return html.EscapeString(a.Text)
	}
	var sb strings.Builder
	sb.WriteString(`<a href="`)
	sb.WriteString(html.EscapeString(a.Href))
	sb.WriteString(`"`)
	if a.Target != "" {
		sb.WriteString(` target="`)
		sb.WriteString(html.EscapeString(a.Target))
		sb.WriteString(`" rel="noopener"`)
	}
	sb.WriteString(`>`)
	sb.WriteString(html.EscapeString(a.Text))
	sb.WriteString(`</a>`)
	return sb.String()
}

// linkSchemes are the only schemes rendered as live links.
var linkSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// SafeHref reports whether href is an absolute http, https or mailto URL.
func SafeHref(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return linkSchemes[strings.ToLower(u.Scheme)]
}

// LinksToAnchors splits a newline-delimited list of URLs into anchors that open
// in a new tab. Stray commas left over from the server's ",\n " join are
// stripped; blank entries are dropped.
func LinksToAnchors(s string) []Anchor {
	var anchors []Anchor
	for _, line := range strings.Split(s, "\n") {
		u := strings.Trim(strings.TrimSpace(line), ", ")
		if u == "" {
			continue
		}
		anchors = append(anchors, Anchor{Href: u, Text: u, Target: NewTab})
	}
	return anchors
}

// AnchorsHTML renders anchors one per line.
func AnchorsHTML(anchors []Anchor) string {
	parts := make([]string, len(anchors))
	for i, a := range anchors {
		parts[i] = a.HTML()
	}
	return strings.Join(parts, LineBreak)
}

// MailtoHref returns the mailto: link target for an address, or "" if empty.
func MailtoHref(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return ""
	}
	return "mailto:" + email
}
