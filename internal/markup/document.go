// ABOUTME: Document is the editable model behind a template's markup content
// ABOUTME: Paragraph blocks of styled runes; offsets are rune positions with "\n" between blocks

package markup

import (
	"strings"
	"unicode/utf8"
)

// Mark is an inline formatting flag carried by a rune.
type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Underline
)

// String returns the command name of the mark.
func (m Mark) String() string {
	switch m {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case Underline:
		return "underline"
	default:
		return "unknown"
	}
}

// ParseMark maps a command name ("bold", "italic", "underline") to a Mark.
func ParseMark(name string) (Mark, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bold":
		return Bold, true
	case "italic":
		return Italic, true
	case "underline":
		return Underline, true
	}
	return 0, false
}

// Style is the complete formatting state of a single rune.
type Style struct {
	Marks Mark
	Color string // normalized "#rrggbb"; empty means default color
}

// Has reports whether the style carries m.
func (s Style) Has(m Mark) bool { return s.Marks&m != 0 }

// Run is a maximal span of equally styled text within one block.
type Run struct {
	Text  string
	Style Style
}

// Range is a half-open span of document offsets. Start may exceed End;
// use Normalize before iterating.
type Range struct {
	Start, End int
}

// Collapsed reports whether the range is a bare caret.
func (r Range) Collapsed() bool { return r.Start == r.End }

// Normalize returns the range with Start <= End.
func (r Range) Normalize() Range {
	if r.Start > r.End {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

type block struct {
	text   []rune
	styles []Style
}

// Document holds paragraph blocks. It always contains at least one block;
// an empty document is a single empty paragraph.
type Document struct {
	blocks []block
}

// New returns an empty document.
func New() *Document {
	return &Document{blocks: []block{{}}}
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	out := &Document{blocks: make([]block, len(d.blocks))}
	for i, b := range d.blocks {
		out.blocks[i] = block{
			text:   append([]rune(nil), b.text...),
			styles: append([]Style(nil), b.styles...),
		}
	}
	return out
}

// BlockCount returns the number of paragraphs.
func (d *Document) BlockCount() int { return len(d.blocks) }

// BlockText returns the plain text of block i.
func (d *Document) BlockText(i int) string {
	if i < 0 || i >= len(d.blocks) {
		return ""
	}
	return string(d.blocks[i].text)
}

// BlockLen returns the rune length of block i.
func (d *Document) BlockLen(i int) int {
	if i < 0 || i >= len(d.blocks) {
		return 0
	}
	return len(d.blocks[i].text)
}

// Text returns the plain text with blocks joined by "\n".
func (d *Document) Text() string {
	parts := make([]string, len(d.blocks))
	for i, b := range d.blocks {
		parts[i] = string(b.text)
	}
	return strings.Join(parts, "\n")
}

// Len returns the total rune length including block separators.
func (d *Document) Len() int {
	n := len(d.blocks) - 1
	for _, b := range d.blocks {
		n += len(b.text)
	}
	return n
}

// Locate converts a document offset into (block, column). Offsets outside
// the document are clamped.
func (d *Document) Locate(offset int) (int, int) {
	if offset <= 0 {
		return 0, 0
	}
	for i, b := range d.blocks {
		if offset <= len(b.text) {
			return i, offset
		}
		offset -= len(b.text) + 1
	}
	last := len(d.blocks) - 1
	return last, len(d.blocks[last].text)
}

// Offset converts (block, column) into a document offset, clamping both.
func (d *Document) Offset(blk, col int) int {
	blk = min(max(blk, 0), len(d.blocks)-1)
	col = min(max(col, 0), len(d.blocks[blk].text))
	off := 0
	for i := range blk {
		off += len(d.blocks[i].text) + 1
	}
	return off + col
}

// Runs returns block i grouped into maximal equally styled runs.
func (d *Document) Runs(i int) []Run {
	if i < 0 || i >= len(d.blocks) {
		return nil
	}
	b := d.blocks[i]
	var runs []Run
	start := 0
	for j := 1; j <= len(b.text); j++ {
		if j < len(b.text) && b.styles[j] == b.styles[start] {
			continue
		}
		runs = append(runs, Run{Text: string(b.text[start:j]), Style: b.styles[start]})
		start = j
	}
	return runs
}

// StyleAt returns the style typing at offset would inherit: the style of the
// rune before the caret, or of the first rune when the caret is at the start
// of a non-empty block.
func (d *Document) StyleAt(offset int) Style {
	blk, col := d.Locate(offset)
	b := d.blocks[blk]
	switch {
	case col > 0:
		return b.styles[col-1]
	case len(b.styles) > 0:
		return b.styles[0]
	default:
		return Style{}
	}
}

// Insert places text at offset with the given style and returns the offset
// just past the inserted text. "\n" in text splits the block.
func (d *Document) Insert(offset int, text string, style Style) int {
	if text == "" {
		return offset
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	blk, col := d.Locate(offset)
	lines := strings.Split(text, "\n")

	cur := d.blocks[blk]
	headText := append([]rune(nil), cur.text[:col]...)
	headStyles := append([]Style(nil), cur.styles[:col]...)
	tailText := append([]rune(nil), cur.text[col:]...)
	tailStyles := append([]Style(nil), cur.styles[col:]...)

	first := []rune(lines[0])
	headText = append(headText, first...)
	headStyles = append(headStyles, repeatStyle(style, len(first))...)

	if len(lines) == 1 {
		d.blocks[blk] = block{
			text:   append(headText, tailText...),
			styles: append(headStyles, tailStyles...),
		}
		return d.Offset(blk, len(headText))
	}

	added := make([]block, 0, len(lines))
	added = append(added, block{text: headText, styles: headStyles})
	for _, line := range lines[1 : len(lines)-1] {
		rs := []rune(line)
		added = append(added, block{text: rs, styles: repeatStyle(style, len(rs))})
	}
	lastRunes := []rune(lines[len(lines)-1])
	lastCol := len(lastRunes)
	added = append(added, block{
		text:   append(lastRunes, tailText...),
		styles: append(repeatStyle(style, lastCol), tailStyles...),
	})

	blocks := make([]block, 0, len(d.blocks)+len(added)-1)
	blocks = append(blocks, d.blocks[:blk]...)
	blocks = append(blocks, added...)
	blocks = append(blocks, d.blocks[blk+1:]...)
	d.blocks = blocks
	return d.Offset(blk+len(added)-1, lastCol)
}

// Delete removes the runes in r, joining blocks when r spans a separator.
func (d *Document) Delete(r Range) {
	r = r.Normalize()
	if r.Collapsed() {
		return
	}
	b1, c1 := d.Locate(r.Start)
	b2, c2 := d.Locate(r.End)

	first, last := d.blocks[b1], d.blocks[b2]
	joined := block{
		text:   make([]rune, 0, c1+len(last.text)-c2),
		styles: make([]Style, 0, c1+len(last.text)-c2),
	}
	joined.text = append(joined.text, first.text[:c1]...)
	joined.text = append(joined.text, last.text[c2:]...)
	joined.styles = append(joined.styles, first.styles[:c1]...)
	joined.styles = append(joined.styles, last.styles[c2:]...)

	blocks := make([]block, 0, len(d.blocks)-(b2-b1))
	blocks = append(blocks, d.blocks[:b1]...)
	blocks = append(blocks, joined)
	blocks = append(blocks, d.blocks[b2+1:]...)
	d.blocks = blocks
}

// HasMark reports whether every rune in r carries m. An empty range never does.
func (d *Document) HasMark(r Range, m Mark) bool {
	seen := false
	all := true
	d.each(r, func(s *Style) {
		seen = true
		if !s.Has(m) {
			all = false
		}
	})
	return seen && all
}

// SetMark adds or removes m on every rune in r.
func (d *Document) SetMark(r Range, m Mark, on bool) {
	d.each(r, func(s *Style) {
		if on {
			s.Marks |= m
		} else {
			s.Marks &^= m
		}
	})
}

// SetColor applies color to every rune in r. An empty color resets to default.
func (d *Document) SetColor(r Range, color string) {
	d.each(r, func(s *Style) { s.Color = color })
}

func (d *Document) each(r Range, fn func(*Style)) {
	r = r.Normalize()
	if r.Collapsed() {
		return
	}
	b1, c1 := d.Locate(r.Start)
	b2, c2 := d.Locate(r.End)
	for b := b1; b <= b2; b++ {
		from, to := 0, len(d.blocks[b].styles)
		if b == b1 {
			from = c1
		}
		if b == b2 {
			to = c2
		}
		for i := from; i < to; i++ {
			fn(&d.blocks[b].styles[i])
		}
	}
}

func repeatStyle(s Style, n int) []Style {
	out := make([]Style, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// RuneLen is a convenience for callers that compute caret movement.
func RuneLen(s string) int { return utf8.RuneCountInString(s) }
