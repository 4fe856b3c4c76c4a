// ABOUTME: Tests for the markup Document model, parsing, serialization and visible text
// ABOUTME: Table-driven; round-trips editor markup and exercises range edits across blocks

package markup

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    string
		texts []string
	}{
		{"plain text", "Content A", []string{"Content A"}},
		{"empty string", "", []string{""}},
		{"empty paragraph", "<p><br></p>", []string{""}},
		{"bare paragraph", "<p></p>", []string{""}},
		{"two paragraphs", "<p>Hello</p><p>World</p>", []string{"Hello", "World"}},
		{"br splits", "<div>a<br>b</div>", []string{"a", "b"}},
		{"trailing br", "<p>a<br></p>", []string{"a"}},
		{"pretty printed", "<p>a</p>\n  <p>b</p>\n", []string{"a", "b"}},
		{"plain newlines", "a\n\nb", []string{"a", "", "b"}},
		{"script dropped", "<p>x<script>alert(1)</script></p>", []string{"x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d, err := Parse(tc.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tc.in, err)
			}
			got := make([]string, d.BlockCount())
			for i := range got {
				got[i] = d.BlockText(i)
			}
			if diff := cmp.Diff(tc.texts, got); diff != "" {
				t.Errorf("blocks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_InlineStyles(t *testing.T) {
	t.Parallel()

	d := MustParse(`<p>a<b>b<i>c</i></b><u>d</u><span style="color: rgb(255, 0, 0);">e</span><font color="#0F0">f</font></p>`)
	want := []Run{
		{Text: "a"},
		{Text: "b", Style: Style{Marks: Bold}},
		{Text: "c", Style: Style{Marks: Bold | Italic}},
		{Text: "d", Style: Style{Marks: Underline}},
		{Text: "e", Style: Style{Color: "#ff0000"}},
		{Text: "f", Style: Style{Color: "#00ff00"}},
	}
	if diff := cmp.Diff(want, d.Runs(0)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestHTML_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", EmptyParagraph},
		{"Content A", "<p>Content A</p>"},
		{"<p>Hello</p><p><br></p>", "<p>Hello</p><p><br></p>"},
		{"<p><b>x</b> &amp; <i>y</i></p>", "<p><b>x</b> &amp; <i>y</i></p>"},
		{`<p><span style="color: #ff0000"><b>red</b></span></p>`, `<p><span style="color: #ff0000"><b>red</b></span></p>`},
	}
	for _, tc := range tests {
		if got := MustParse(tc.in).HTML(); got != tc.want {
			t.Errorf("HTML(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestDocument_LocateOffset(t *testing.T) {
	t.Parallel()

	d := MustParse("<p>abc</p><p></p><p>de</p>")
	if d.Len() != 7 {
		t.Fatalf("Len() = %d; want 7", d.Len())
	}
	cases := []struct{ off, blk, col int }{
		{0, 0, 0}, {3, 0, 3}, {4, 1, 0}, {5, 2, 0}, {7, 2, 2}, {99, 2, 2}, {-1, 0, 0},
	}
	for _, c := range cases {
		blk, col := d.Locate(c.off)
		if blk != c.blk || col != c.col {
			t.Errorf("Locate(%d) = (%d,%d); want (%d,%d)", c.off, blk, col, c.blk, c.col)
		}
		if c.off >= 0 && c.off <= d.Len() {
			if got := d.Offset(blk, col); got != c.off {
				t.Errorf("Offset(%d,%d) = %d; want %d", blk, col, got, c.off)
			}
		}
	}
}

func TestDocument_InsertAndDelete(t *testing.T) {
	t.Parallel()

	d := MustParse("<p>Hello</p>")
	end := d.Insert(5, " world\nsecond", Style{Marks: Bold})
	if got := d.Text(); got != "Hello world\nsecond" {
		t.Fatalf("Text() = %q", got)
	}
	if end != d.Len() {
		t.Errorf("Insert returned %d; want %d", end, d.Len())
	}
	if got := d.HTML(); got != "<p>Hello<b> world</b></p><p><b>second</b></p>" {
		t.Errorf("HTML() = %q", got)
	}

	// Delete across the block separator joins paragraphs.
	d.Delete(Range{Start: 8, End: 12})
	if got := d.Text(); got != "Hello wosecond" {
		t.Errorf("after Delete Text() = %q", got)
	}
	if d.BlockCount() != 1 {
		t.Errorf("BlockCount() = %d; want 1", d.BlockCount())
	}
}

func TestDocument_Marks(t *testing.T) {
	t.Parallel()

	d := MustParse("<p>abcd</p>")
	r := Range{Start: 3, End: 1}
	d.SetMark(r, Bold, true)
	if !d.HasMark(r, Bold) {
		t.Fatal("HasMark after SetMark = false")
	}
	if d.HasMark(Range{Start: 0, End: 4}, Bold) {
		t.Error("HasMark on partially bold range = true")
	}
	if d.HasMark(Range{Start: 2, End: 2}, Bold) {
		t.Error("HasMark on collapsed range = true")
	}
	d.SetColor(Range{Start: 0, End: 1}, "#00ff00")
	want := `<p><span style="color: #00ff00">a</span><b>bc</b>d</p>`
	if got := d.HTML(); got != want {
		t.Errorf("HTML() = %q; want %q", got, want)
	}
	if s := d.StyleAt(2); !s.Has(Bold) {
		t.Errorf("StyleAt(2) = %+v; want bold", s)
	}
}

func TestDocument_CloneIsDeep(t *testing.T) {
	t.Parallel()

	d := MustParse("<p>abc</p>")
	c := d.Clone()
	c.Insert(0, "x", Style{})
	if d.Text() != "abc" {
		t.Errorf("original mutated: %q", d.Text())
	}
}

func TestVisibleText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		empty bool
	}{
		{"<p><br></p>", true},
		{"<p>Hello</p>", false},
		{"", true},
		{"<p>&nbsp;</p><p> </p>", true},
		{"<p><b></b></p>", true},
		{"<p>a &amp; b</p>", false},
	}
	for _, tc := range tests {
		if got := IsMarkupEmpty(tc.in); got != tc.empty {
			t.Errorf("IsMarkupEmpty(%q) = %v; want %v", tc.in, got, tc.empty)
		}
	}
	if got := VisibleText("<p>a &amp; <b>b</b></p>"); got != "a & b" {
		t.Errorf("VisibleText = %q; want %q", got, "a & b")
	}
}

func TestSanitize_DropsScriptsAndHandlers(t *testing.T) {
	t.Parallel()

	got := Sanitize(`<p onclick="x()">hi<script>bad()</script><a href="http://x">link</a></p>`)
	if got != "<p>hilink</p>" {
		t.Errorf("Sanitize = %q", got)
	}
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	good := map[string]string{
		"#FF0000":          "#ff0000",
		"#0f0":             "#00ff00",
		" rgb(0, 0, 255) ": "#0000ff",
	}
	for in, want := range good {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Errorf("ParseColor(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"red", "#12", "#gggggg", "rgb(1,2)", "rgb(1,2,300)"} {
		if _, err := ParseColor(in); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("ParseColor(%q) err = %v; want ErrInvalidColor", in, err)
		}
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	d := MustParse("<p>Dear <b>Client </b>and <i>you</i></p><p>1*2</p>")
	want := "Dear **Client** and _you_\n\n1\\*2"
	if got := d.Markdown(); got != want {
		t.Errorf("Markdown() = %q; want %q", got, want)
	}
}
