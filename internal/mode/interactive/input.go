// ABOUTME: LineInput is a single-line rune editor for form fields and prompts
// ABOUTME: Value semantics; handles typing, backspace, delete, word kill and caret moves

package interactive

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// LineInput edits one line of text.
type LineInput struct {
	value []rune
	pos   int
}

// NewLineInput returns an input holding s with the caret at the end.
func NewLineInput(s string) LineInput {
	r := []rune(s)
	return LineInput{value: r, pos: len(r)}
}

// Value returns the current text.
func (in LineInput) Value() string { return string(in.value) }

// Update applies one key. It reports whether the text changed.
func (in LineInput) Update(msg tea.KeyMsg) (LineInput, bool) {
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace:
		r := msg.Runes
		if msg.Type == tea.KeySpace {
			r = []rune{' '}
		}
		if len(r) == 0 {
			return in, false
		}
		next := make([]rune, 0, len(in.value)+len(r))
		next = append(next, in.value[:in.pos]...)
		next = append(next, r...)
		next = append(next, in.value[in.pos:]...)
		in.value = next
		in.pos += len(r)
		return in, true
	case tea.KeyBackspace:
		if in.pos == 0 {
			return in, false
		}
		in.value = append(in.value[:in.pos-1:in.pos-1], in.value[in.pos:]...)
		in.pos--
		return in, true
	case tea.KeyDelete:
		if in.pos >= len(in.value) {
			return in, false
		}
		in.value = append(in.value[:in.pos:in.pos], in.value[in.pos+1:]...)
		return in, true
	case tea.KeyCtrlW:
		start := in.pos
		for start > 0 && in.value[start-1] == ' ' {
			start--
		}
		for start > 0 && in.value[start-1] != ' ' {
			start--
		}
		if start == in.pos {
			return in, false
		}
		in.value = append(in.value[:start:start], in.value[in.pos:]...)
		in.pos = start
		return in, true
	case tea.KeyLeft:
		in.pos = max(in.pos-1, 0)
	case tea.KeyRight:
		in.pos = min(in.pos+1, len(in.value))
	case tea.KeyHome, tea.KeyCtrlA:
		in.pos = 0
	case tea.KeyEnd, tea.KeyCtrlE:
		in.pos = len(in.value)
	}
	return in, false
}

// View renders the text, with a block caret when focused.
func (in LineInput) View(focused bool) string {
	if !focused {
		return string(in.value)
	}
	s := Styles()
	var b strings.Builder
	b.WriteString(string(in.value[:in.pos]))
	if in.pos < len(in.value) {
		b.WriteString(s.Cursor.Render(string(in.value[in.pos])))
		b.WriteString(string(in.value[in.pos+1:]))
	} else {
		b.WriteString(s.Cursor.Render(" "))
	}
	return b.String()
}
