// ABOUTME: Tests for placeholder extraction and preview rendering
// ABOUTME: Covers ordering, whitespace tolerance, malformed braces, overrides and escaping

package interpolate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"none", "<p>plain</p>", nil},
		{"order and dedupe", "{{B}} {{ A }} {{B}} {{  A  }}", []string{"B", "A"}},
		{"inner spaces kept", "Dear {{ Client Name }},", []string{"Client Name"}},
		{"unbalanced open", "{{ Client Name } and {{Date}}", []string{"Date"}},
		{"unbalanced close", "Client Name }} only", nil},
		{"empty braces", "{{}} {{   }}", nil},
		{"across tags", "<p>{{ Fee }}</p><p>{{Term}}</p>", []string{"Fee", "Term"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, Extract(tc.content)); diff != "" {
				t.Errorf("Extract(%q) mismatch (-want +got):\n%s", tc.content, diff)
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"2025-12-01":           "Mon Dec 01 2025",
		"2025-12-01T10:00:00Z": "Mon Dec 01 2025",
		"":                     "",
		"soon":                 "soon",
	}
	for in, want := range tests {
		if got := FormatDate(in); got != want {
			t.Errorf("FormatDate(%q) = %q; want %q", in, got, want)
		}
	}
}

func TestRender_AutoValues(t *testing.T) {
	t.Parallel()

	content := "<p>Dear {{ Client Name }}, effective {{Contract Date}}. Fee {{Fee}}.</p>"
	got := Render(content, Values{ClientName: "Client A", ContractDate: "2025-12-01"}, Options{})
	want := "<p>Dear Client A, effective Mon Dec 01 2025. Fee {{Fee}}.</p>"
	if got != want {
		t.Errorf("Render() = %q; want %q", got, want)
	}
}

func TestRender_EmptyAutoValue(t *testing.T) {
	t.Parallel()

	got := Render("[{{Client Name}}]", Values{}, Options{})
	if got != "[]" {
		t.Errorf("Render() = %q; want %q", got, "[]")
	}
}

func TestRender_Overrides(t *testing.T) {
	t.Parallel()

	content := "{{Client Name}} pays {{Fee}}"
	v := Values{ClientName: "Client A"}
	ov := map[string]string{"Client Name": "Acme", "Fee": "$10"}

	if got, want := Render(content, v, Options{HonorOverrides: true, Overrides: ov}), "Acme pays $10"; got != want {
		t.Errorf("honored: Render() = %q; want %q", got, want)
	}
	if got, want := Render(content, v, Options{HonorOverrides: false, Overrides: ov}), "Client A pays {{Fee}}"; got != want {
		t.Errorf("ignored: Render() = %q; want %q", got, want)
	}
	// Empty override falls back to the auto value.
	empty := map[string]string{"Client Name": ""}
	if got, want := Render(content, v, Options{HonorOverrides: true, Overrides: empty}), "Client A pays {{Fee}}"; got != want {
		t.Errorf("empty override: Render() = %q; want %q", got, want)
	}
}

func TestRender_EscapesValues(t *testing.T) {
	t.Parallel()

	got := Render("<p>{{Client Name}}</p>", Values{ClientName: "<b>A&B</b>"}, Options{})
	want := "<p>&lt;b&gt;A&amp;B&lt;/b&gt;</p>"
	if got != want {
		t.Errorf("Render() = %q; want %q", got, want)
	}
}
