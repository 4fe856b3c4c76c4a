// ABOUTME: CommandExecutor applies inline formatting to the focused editor's selection
// ABOUTME: No-op without focus or selection; collapsed carets arm the style for the next keystroke

package editor

import (
	"fmt"

	"github.com/mauromedda/contract-editor-go/internal/markup"
)

// Surface is the host capability describing the editing surface.
type Surface interface {
	Focused() bool
	// Selection returns the selected document range, or false when the
	// caret is outside the editable region.
	Selection() (markup.Range, bool)
}

// CommandExecutor runs formatting commands against one ContentModel.
type CommandExecutor struct {
	surface Surface
	content *ContentModel
}

// NewCommandExecutor binds commands to a surface and its content.
func NewCommandExecutor(s Surface, c *ContentModel) *CommandExecutor {
	return &CommandExecutor{surface: s, content: c}
}

func (e *CommandExecutor) selection() (markup.Range, bool) {
	if e.surface == nil || !e.surface.Focused() {
		return markup.Range{}, false
	}
	r, ok := e.surface.Selection()
	if !ok {
		return markup.Range{}, false
	}
	return e.content.clampRange(r), true
}

// ApplyInline toggles mark over the selection: removed when every selected
// rune already has it, added otherwise. It reports whether anything was
// applied.
func (e *CommandExecutor) ApplyInline(mark markup.Mark) bool {
	r, ok := e.selection()
	if !ok {
		return false
	}
	if r.Collapsed() {
		e.content.setPending(r.Start, func(s *markup.Style) {
			if s.Has(mark) {
				s.Marks &^= mark
			} else {
				s.Marks |= mark
			}
		})
		return true
	}
	on := !e.content.doc.HasMark(r, mark)
	e.content.mutate(func(d *markup.Document) { d.SetMark(r, mark, on) })
	return true
}

// ApplyColor sets the text color of the selection. color must be #rgb,
// #rrggbb or rgb(r,g,b); anything else is rejected before touching content.
func (e *CommandExecutor) ApplyColor(color string) (bool, error) {
	c, err := markup.ParseColor(color)
	if err != nil {
		return false, fmt.Errorf("apply color: %w", err)
	}
	r, ok := e.selection()
	if !ok {
		return false, nil
	}
	if r.Collapsed() {
		e.content.setPending(r.Start, func(s *markup.Style) { s.Color = c })
		return true, nil
	}
	e.content.mutate(func(d *markup.Document) { d.SetColor(r, c) })
	return true, nil
}
