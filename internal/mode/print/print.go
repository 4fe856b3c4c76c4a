// ABOUTME: Headless output of stored templates with text, markdown, and JSON formatters
// ABOUTME: Backs the show and list subcommands; optionally renders the preview substitution

package print

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mauromedda/contract-editor-go/internal/interpolate"
	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

// Config configures headless output.
type Config struct {
	OutputFormat string            // "text" (default), "markdown", "json"
	Preview      bool              // substitute placeholders as the live preview does
	Overrides    map[string]string // preview values for non-reserved placeholders
}

// Deps provides dependencies for print mode.
type Deps struct {
	Store template.Store
	Out   io.Writer // defaults to stdout
}

// Show writes template id in the configured format.
func Show(ctx context.Context, cfg Config, deps Deps, id int64) error {
	doc, err := deps.Store.Fetch(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch template %d: %w", id, err)
	}
	f, err := newFormatter(cfg.OutputFormat, output(deps))
	if err != nil {
		return err
	}
	return f.document(doc, body(doc, cfg))
}

// List writes a summary of every stored template.
func List(ctx context.Context, cfg Config, deps Deps) error {
	docs, err := deps.Store.List(ctx)
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}
	f, err := newFormatter(cfg.OutputFormat, output(deps))
	if err != nil {
		return err
	}
	return f.list(docs)
}

func output(deps Deps) io.Writer {
	if deps.Out == nil {
		return os.Stdout
	}
	return deps.Out
}

// body canonicalizes the stored markup and applies the preview substitution
// when requested.
func body(doc template.Document, cfg Config) *markup.Document {
	content := markup.Sanitize(doc.Content)
	if cfg.Preview {
		content = interpolate.Render(content, interpolate.ValuesFromForm(template.FormFromDocument(doc)), interpolate.Options{
			HonorOverrides: true,
			Overrides:      cfg.Overrides,
		})
	}
	d, err := markup.Parse(content)
	if err != nil {
		return markup.New()
	}
	return d
}

// formatter abstracts output formatting.
type formatter interface {
	document(doc template.Document, body *markup.Document) error
	list(docs []template.Document) error
}

func newFormatter(format string, w io.Writer) (formatter, error) {
	switch format {
	case "", "text":
		return textFormatter{w: w}, nil
	case "markdown", "md":
		return markdownFormatter{w: w}, nil
	case "json":
		return jsonFormatter{w: w}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, markdown or json)", format)
	}
}

func activeLabel(on bool) string {
	if on {
		return "active"
	}
	return "inactive"
}

// textFormatter outputs aligned plain text.
type textFormatter struct{ w io.Writer }

func (f textFormatter) document(doc template.Document, body *markup.Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s [%s]\n", doc.ID, doc.Name, activeLabel(doc.IsActive))
	fmt.Fprintf(&b, "client:  %s\n", doc.ClientName)
	fmt.Fprintf(&b, "date:    %s\n", doc.ContractDate)
	fmt.Fprintf(&b, "type:    %s\n", doc.ContractType)
	if len(doc.Tags) > 0 {
		fmt.Fprintf(&b, "tags:    %s\n", strings.Join(doc.Tags, ", "))
	}
	if a := doc.Attachments; a != nil {
		fmt.Fprintf(&b, "attach:  %s <%s>\n", a.Name, a.URL)
	}
	b.WriteString("\n")
	b.WriteString(body.Text())
	b.WriteString("\n")
	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f textFormatter) list(docs []template.Document) error {
	var b strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&b, "%4d  %-24s %-12s %s\n", d.ID, d.Name, d.ContractType, activeLabel(d.IsActive))
	}
	_, err := io.WriteString(f.w, b.String())
	return err
}

// markdownFormatter outputs a Markdown document.
type markdownFormatter struct{ w io.Writer }

func (f markdownFormatter) document(doc template.Document, body *markup.Document) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Name)
	fmt.Fprintf(&b, "- **Client:** %s\n", doc.ClientName)
	fmt.Fprintf(&b, "- **Date:** %s\n", doc.ContractDate)
	fmt.Fprintf(&b, "- **Type:** %s\n", doc.ContractType)
	if len(doc.Tags) > 0 {
		fmt.Fprintf(&b, "- **Tags:** %s\n", strings.Join(doc.Tags, ", "))
	}
	fmt.Fprintf(&b, "- **Status:** %s\n", activeLabel(doc.IsActive))
	if a := doc.Attachments; a != nil {
		fmt.Fprintf(&b, "- **Attachment:** [%s](%s)\n", a.Name, a.URL)
	}
	if md := body.Markdown(); md != "" {
		b.WriteString("\n")
		b.WriteString(md)
		b.WriteString("\n")
	}
	_, err := io.WriteString(f.w, b.String())
	return err
}

func (f markdownFormatter) list(docs []template.Document) error {
	var b strings.Builder
	b.WriteString("| ID | Name | Type | Status |\n|---:|------|------|--------|\n")
	for _, d := range docs {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n", d.ID, d.Name, d.ContractType, activeLabel(d.IsActive))
	}
	_, err := io.WriteString(f.w, b.String())
	return err
}

// jsonFormatter writes one JSON value per call.
type jsonFormatter struct{ w io.Writer }

type jsonDocument struct {
	template.Document
	Text string `json:"text"`
}

func (f jsonFormatter) document(doc template.Document, body *markup.Document) error {
	doc.Content = body.HTML()
	return f.encode(jsonDocument{Document: doc, Text: body.Text()})
}

func (f jsonFormatter) list(docs []template.Document) error {
	if docs == nil {
		docs = []template.Document{}
	}
	return f.encode(docs)
}

func (f jsonFormatter) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	_, err = fmt.Fprintln(f.w, string(data))
	return err
}
