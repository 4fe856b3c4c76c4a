// ABOUTME: Tests for HTML export of contract templates
// ABOUTME: Validates substitution, escaping, sanitizing and the metadata table

package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mauromedda/contract-editor-go/internal/template"
)

func sample() template.Document {
	return template.Document{
		ID:           3,
		Name:         "Master <services>",
		Content:      "<p>Between us and {{Client Name}} on {{ Contract Date }} for {{Project}}.</p>",
		ClientName:   "ACME & Sons",
		ContractDate: "2025-12-01",
		ContractType: "Service",
		Attachments:  &template.Attachment{Name: "scope.pdf", URL: "https://example.com/uploads/scope.pdf"},
		Tags:         []string{"Urgent", "Important"},
		IsActive:     true,
	}
}

func render(t *testing.T, doc template.Document, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	if err := ExportHTML(doc, opts, &buf); err != nil {
		t.Fatalf("ExportHTML: %v", err)
	}
	return buf.String()
}

func TestExportHTML_Substitutes(t *testing.T) {
	t.Parallel()

	out := render(t, sample(), Options{})

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>Master &lt;services&gt;</title>",
		"Between us and ACME &amp; Sons on Mon Dec 01 2025 for {{Project}}.",
		"Unfilled placeholders: Project",
		"<td>Urgent, Important</td>",
		`<a href="https://example.com/uploads/scope.pdf">scope.pdf</a>`,
		"<td>active</td>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestExportHTML_Overrides(t *testing.T) {
	t.Parallel()

	out := render(t, sample(), Options{Overrides: map[string]string{"Project": "Apollo", "Client Name": "Globex"}})
	if !strings.Contains(out, "Between us and Globex on Mon Dec 01 2025 for Apollo.") {
		t.Errorf("overrides not applied:\n%s", out)
	}
	if strings.Contains(out, "Unfilled") {
		t.Error("all placeholders are filled")
	}
}

func TestExportHTML_Raw(t *testing.T) {
	t.Parallel()

	out := render(t, sample(), Options{Raw: true})
	if !strings.Contains(out, "{{Client Name}}") || !strings.Contains(out, "<td>2025-12-01</td>") {
		t.Errorf("raw export should keep placeholders and the stored date:\n%s", out)
	}
}

func TestExportHTML_SanitizesBody(t *testing.T) {
	t.Parallel()

	doc := sample()
	doc.Content = `<p>ok<script>alert(1)</script></p>`
	doc.IsActive = false
	doc.Attachments = nil
	doc.Tags = nil
	out := render(t, doc, Options{})

	if strings.Contains(out, "<script>") {
		t.Error("script survived export")
	}
	if !strings.Contains(out, `class="inactive"`) {
		t.Error("inactive status should be flagged")
	}
	if strings.Contains(out, "Attachment") || strings.Contains(out, "<th>Tags</th>") {
		t.Error("empty rows should be omitted")
	}
}

func TestExportHTML_PlainContentWrapped(t *testing.T) {
	t.Parallel()

	doc := sample()
	doc.Content = "Content A"
	out := render(t, doc, Options{})
	if !strings.Contains(out, "<p>Content A</p>") {
		t.Errorf("plain content should be canonicalized:\n%s", out)
	}
}
