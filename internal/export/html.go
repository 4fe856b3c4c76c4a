// ABOUTME: HTML exporter for contract templates using Go html/template
// ABOUTME: Renders the interpolated body with a metadata table as a standalone page

package export

import (
	htmpl "html/template"
	"io"
	"strings"

	"github.com/mauromedda/contract-editor-go/internal/interpolate"
	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

// Options controls placeholder substitution in the exported body.
type Options struct {
	// Overrides fill placeholders other than the reserved names.
	Overrides map[string]string
	// Raw skips substitution and exports the template as authored.
	Raw bool
}

type page struct {
	Doc         template.Document
	Body        htmpl.HTML
	Date        string
	Tags        string
	Unfilled    []string
	Placeholder bool
}

// ExportHTML renders doc as a styled HTML document to w.
// The body is sanitized and canonicalized before it is trusted as HTML.
func ExportHTML(doc template.Document, opts Options, w io.Writer) error {
	body := markup.Sanitize(doc.Content)
	if d, err := markup.Parse(body); err == nil {
		body = d.HTML()
	}

	p := page{Doc: doc, Tags: strings.Join(doc.Tags, ", ")}
	if opts.Raw {
		p.Date = doc.ContractDate
	} else {
		body = interpolate.Render(body, interpolate.ValuesFromForm(template.FormFromDocument(doc)), interpolate.Options{
			HonorOverrides: true,
			Overrides:      opts.Overrides,
		})
		p.Date = interpolate.FormatDate(doc.ContractDate)
		p.Unfilled = interpolate.Extract(body)
		p.Placeholder = len(p.Unfilled) > 0
	}
	p.Body = htmpl.HTML(body)
	return htmlTmpl.Execute(w, p)
}

var htmlTmpl = htmpl.Must(htmpl.New("template").Parse(htmlTemplate))

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{ .Doc.Name }}</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    background: #fdfdfb;
    color: #1e1e2e;
    font-family: Georgia, 'Times New Roman', serif;
    font-size: 15px;
    line-height: 1.6;
    padding: 32px;
    max-width: 820px;
    margin: 0 auto;
  }
  h1 { font-size: 24px; margin-bottom: 12px; }
  table.meta {
    border-collapse: collapse;
    margin-bottom: 24px;
    font-family: 'SF Mono', 'Fira Code', monospace;
    font-size: 12px;
  }
  table.meta th {
    text-align: left;
    color: #6c7086;
    font-weight: 600;
    padding: 2px 16px 2px 0;
  }
  .inactive { color: #d20f39; }
  .body p { margin-bottom: 12px; min-height: 1em; }
  .unfilled {
    border-left: 4px solid #df8e1d;
    background: #df8e1d22;
    padding: 8px 12px;
    margin-bottom: 24px;
    font-size: 13px;
  }
</style>
</head>
<body>
<h1>{{ .Doc.Name }}</h1>
<table class="meta">
  <tr><th>Client</th><td>{{ .Doc.ClientName }}</td></tr>
  <tr><th>Date</th><td>{{ .Date }}</td></tr>
  <tr><th>Type</th><td>{{ .Doc.ContractType }}</td></tr>
  {{- if .Tags }}
  <tr><th>Tags</th><td>{{ .Tags }}</td></tr>
  {{- end }}
  <tr><th>Status</th><td{{ if not .Doc.IsActive }} class="inactive"{{ end }}>{{ if .Doc.IsActive }}active{{ else }}inactive{{ end }}</td></tr>
  {{- with .Doc.Attachments }}
  <tr><th>Attachment</th><td><a href="{{ .URL }}">{{ .Name }}</a></td></tr>
  {{- end }}
</table>
{{- if .Placeholder }}
<div class="unfilled">Unfilled placeholders: {{ range $i, $n := .Unfilled }}{{ if $i }}, {{ end }}{{ $n }}{{ end }}</div>
{{- end }}
<div class="body">
{{ .Body }}
</div>
</body>
</html>
`
