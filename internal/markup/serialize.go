// ABOUTME: Serializes a Document back to canonical paragraph markup and to Markdown
// ABOUTME: Empty paragraphs become <p><br></p>; marks nest as span > b > i > u

package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// EmptyParagraph is the canonical markup of a paragraph with no text.
const EmptyParagraph = "<p><br></p>"

// HTML returns the canonical markup of the document.
func (d *Document) HTML() string {
	var sb strings.Builder
	for i := range d.blocks {
		runs := d.Runs(i)
		if len(runs) == 0 {
			sb.WriteString(EmptyParagraph)
			continue
		}
		sb.WriteString("<p>")
		for _, r := range runs {
			writeRun(&sb, r)
		}
		sb.WriteString("</p>")
	}
	return sb.String()
}

func writeRun(sb *strings.Builder, r Run) {
	if r.Style.Color != "" {
		sb.WriteString(`<span style="color: `)
		sb.WriteString(r.Style.Color)
		sb.WriteString(`">`)
	}
	if r.Style.Has(Bold) {
		sb.WriteString("<b>")
	}
	if r.Style.Has(Italic) {
		sb.WriteString("<i>")
	}
	if r.Style.Has(Underline) {
		sb.WriteString("<u>")
	}
	sb.WriteString(html.EscapeString(r.Text))
	if r.Style.Has(Underline) {
		sb.WriteString("</u>")
	}
	if r.Style.Has(Italic) {
		sb.WriteString("</i>")
	}
	if r.Style.Has(Bold) {
		sb.WriteString("</b>")
	}
	if r.Style.Color != "" {
		sb.WriteString("</span>")
	}
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`,
)

// Markdown renders the document as Markdown for terminal preview.
// Underline and color have no Markdown form and are dropped.
func (d *Document) Markdown() string {
	paras := make([]string, 0, len(d.blocks))
	for i := range d.blocks {
		var sb strings.Builder
		for _, r := range d.Runs(i) {
			text := markdownEscaper.Replace(r.Text)
			if r.Style.Has(Italic) {
				text = wrapMarker(text, "_")
			}
			if r.Style.Has(Bold) {
				text = wrapMarker(text, "**")
			}
			sb.WriteString(text)
		}
		paras = append(paras, sb.String())
	}
	return strings.Join(paras, "\n\n")
}

// wrapMarker wraps the non-space core of s in marker, keeping surrounding
// whitespace outside so the emphasis still parses.
func wrapMarker(s, marker string) string {
	core := strings.TrimSpace(s)
	if core == "" {
		return s
	}
	lead := s[:strings.Index(s, core)]
	trail := s[len(lead)+len(core):]
	return lead + marker + core + marker + trail
}
