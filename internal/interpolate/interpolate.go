// ABOUTME: Placeholder extraction and substitution for the live preview
// ABOUTME: {{ Name }} tokens; reserved auto values plus optional user overrides

package interpolate

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mauromedda/contract-editor-go/internal/template"
)

// Reserved placeholder names filled from form fields.
const (
	ClientNameKey   = "Client Name"
	ContractDateKey = "Contract Date"
)

// PreviewDateLayout renders dates like "Mon Jan 02 2006".
const PreviewDateLayout = "Mon Jan 02 2006"

var placeholderRe = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)

// Extract returns the distinct placeholder names in first-occurrence order.
// Unbalanced braces simply do not match.
func Extract(content string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(content, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Values are the auto-derived placeholder values.
type Values struct {
	ClientName   string
	ContractDate string
}

// ValuesFromForm derives auto values from the current form.
func ValuesFromForm(f template.Form) Values {
	return Values{ClientName: f.ClientName, ContractDate: f.ContractDate}
}

// Options controls override participation.
type Options struct {
	HonorOverrides bool
	Overrides      map[string]string
}

// FormatDate renders a "YYYY-MM-DD" date for the preview. Empty input yields
// ""; unparseable input is returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := time.Parse(template.DateLayout, s)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, s); err != nil {
			return s
		}
	}
	return t.Format(PreviewDateLayout)
}

// Render substitutes placeholders in content. Reserved names always resolve
// (to "" when the field is empty); other names resolve only through
// overrides and are left intact otherwise. When overrides are honored a
// non-empty override wins over the auto value. Values are HTML-escaped.
func Render(content string, v Values, opts Options) string {
	auto := map[string]string{
		ClientNameKey:   v.ClientName,
		ContractDateKey: FormatDate(v.ContractDate),
	}
	return placeholderRe.ReplaceAllStringFunc(content, func(tok string) string {
		name := strings.TrimSpace(placeholderRe.FindStringSubmatch(tok)[1])
		if opts.HonorOverrides {
			if o, ok := opts.Overrides[name]; ok && o != "" {
				return html.EscapeString(o)
			}
		}
		if a, ok := auto[name]; ok {
			return html.EscapeString(a)
		}
		return tok
	})
}
