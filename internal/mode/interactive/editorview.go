// ABOUTME: EditorView renders the rich-text document with caret and selection
// ABOUTME: Value semantics; implements editor.Surface for formatting commands

package interactive

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/width"
)

// EditorView tracks the caret, an optional selection anchor and focus for
// the content editor. The document itself lives in the session.
type EditorView struct {
	caret     int
	anchor    int
	selecting bool
	sticky    bool
	focused   bool
	width     int
}

// NewEditorView returns an unfocused view with the caret at the start.
func NewEditorView() EditorView { return EditorView{} }

// Focused reports whether the editor holds keyboard focus.
func (v EditorView) Focused() bool { return v.focused }

// Selection returns the selected range, collapsed at the caret when nothing
// is selected. It reports false while the editor is unfocused.
func (v EditorView) Selection() (markup.Range, bool) {
	if !v.focused {
		return markup.Range{}, false
	}
	if !v.selecting {
		return markup.Range{Start: v.caret, End: v.caret}, true
	}
	return markup.Range{Start: v.anchor, End: v.caret}.Normalize(), true
}

// Caret returns the caret offset.
func (v EditorView) Caret() int { return v.caret }

// Selecting reports whether a selection anchor is set.
func (v EditorView) Selecting() bool { return v.selecting }

// SetFocused returns a view with focus set.
func (v EditorView) SetFocused(on bool) EditorView {
	v.focused = on
	return v
}

// SetWidth returns a view that wraps at w cells.
func (v EditorView) SetWidth(w int) EditorView {
	v.width = w
	return v
}

// SetCaret moves the caret and drops any selection.
func (v EditorView) SetCaret(offset int) EditorView {
	v.caret = max(offset, 0)
	v.selecting, v.sticky = false, false
	return v
}

// ToggleSelect sets a selection anchor at the caret that plain caret moves
// keep extending, or clears it.
func (v EditorView) ToggleSelect() EditorView {
	v.selecting = !v.selecting
	v.sticky = v.selecting
	v.anchor = v.caret
	return v
}

// Move handles caret navigation keys. Shifted keys extend the selection, as
// do plain keys after ToggleSelect.
// It reports whether the key was a navigation key.
func (v EditorView) Move(doc *markup.Document, k tea.KeyType) (EditorView, bool) {
	extend := false
	switch k {
	case tea.KeyShiftLeft, tea.KeyShiftRight, tea.KeyShiftUp, tea.KeyShiftDown, tea.KeyShiftHome, tea.KeyShiftEnd:
		extend = true
	}
	blk, col := doc.Locate(v.caret)

	next := v.caret
	switch k {
	case tea.KeyLeft, tea.KeyShiftLeft:
		next = stepLeft(doc, v.caret)
	case tea.KeyRight, tea.KeyShiftRight:
		next = stepRight(doc, v.caret)
	case tea.KeyUp, tea.KeyShiftUp:
		if blk > 0 {
			next = doc.Offset(blk-1, col)
		} else {
			next = 0
		}
	case tea.KeyDown, tea.KeyShiftDown:
		if blk < doc.BlockCount()-1 {
			next = doc.Offset(blk+1, col)
		} else {
			next = doc.Len()
		}
	case tea.KeyHome, tea.KeyShiftHome:
		next = doc.Offset(blk, 0)
	case tea.KeyEnd, tea.KeyShiftEnd:
		next = doc.Offset(blk, doc.BlockLen(blk))
	default:
		return v, false
	}

	switch {
	case extend && !v.selecting:
		v.selecting = true
		v.anchor = v.caret
	case !extend && !v.sticky:
		v.selecting = false
	}
	v.caret = next
	return v, true
}

type cell struct {
	style    markup.Style
	selected bool
	cursor   bool
}

// View renders doc one paragraph per line, wrapped to the view width.
func (v EditorView) View(doc *markup.Document) string {
	s := Styles()
	sel, _ := v.Selection()
	hasSel := v.focused && !sel.Collapsed()

	lines := make([]string, 0, doc.BlockCount())
	for i := range doc.BlockCount() {
		var b strings.Builder
		off := doc.Offset(i, 0)

		var (
			seg     strings.Builder
			current cell
			open    bool
		)
		flush := func() {
			if !open {
				return
			}
			st := markupStyle(current.style)
			if current.selected {
				st = st.Inherit(s.Selection)
			}
			if current.cursor {
				st = st.Reverse(true)
			}
			b.WriteString(st.Render(seg.String()))
			seg.Reset()
			open = false
		}

		for _, run := range doc.Runs(i) {
			for _, r := range run.Text {
				c := cell{
					style:    run.Style,
					selected: hasSel && off >= sel.Start && off < sel.End,
					cursor:   v.focused && off == v.caret,
				}
				if open && c != current {
					flush()
				}
				current, open = c, true
				seg.WriteRune(r)
				off++
			}
		}
		flush()
		if v.focused && off == v.caret {
			b.WriteString(s.Cursor.Render(" "))
		}

		line := b.String()
		if v.width > 0 {
			line = lipgloss.NewStyle().Width(v.width).Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// stepLeft returns the offset one grapheme cluster before off. At the start
// of a block it steps over the block separator.
func stepLeft(doc *markup.Document, off int) int {
	blk, col := doc.Locate(off)
	if col == 0 {
		return max(off-1, 0)
	}
	return doc.Offset(blk, width.PrevBoundary(doc.BlockText(blk), col))
}

// stepRight returns the offset one grapheme cluster after off. At the end
// of a block it steps over the block separator.
func stepRight(doc *markup.Document, off int) int {
	blk, col := doc.Locate(off)
	if col >= doc.BlockLen(blk) {
		return min(off+1, doc.Len())
	}
	return doc.Offset(blk, width.NextBoundary(doc.BlockText(blk), col))
}
