// ABOUTME: FooterModel renders the two-line status bar: save state and key hints
// ABOUTME: Save state mirrors the autosave pipeline; transient messages replace the hint line

package interactive

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mauromedda/contract-editor-go/internal/autosave"
	"github.com/mauromedda/contract-editor-go/internal/config"
	"github.com/mauromedda/contract-editor-go/internal/width"
)

// FooterModel renders a two-line status bar at the bottom of the terminal.
// Line 1: template id + name + save status + upload state.
// Line 2: last message, or key hints.
type FooterModel struct {
	id        int64
	name      string
	status    autosave.Status
	uploading bool
	preview   bool
	message   string
	isError   bool
	hints     string
	width     int
}

// NewFooterModel creates a footer with hints taken from kb.
func NewFooterModel(kb *config.Keybindings) FooterModel {
	return FooterModel{hints: keyHints(kb)}
}

// WithTemplate returns a footer showing the template identity.
func (m FooterModel) WithTemplate(id int64, name string) FooterModel {
	m.id, m.name = id, name
	return m
}

// WithStatus returns a footer showing the autosave status.
func (m FooterModel) WithStatus(st autosave.Status) FooterModel {
	m.status = st
	return m
}

// WithUploading returns a footer with the upload indicator set.
func (m FooterModel) WithUploading(on bool) FooterModel {
	m.uploading = on
	return m
}

// WithPreview returns a footer with the preview indicator set.
func (m FooterModel) WithPreview(on bool) FooterModel {
	m.preview = on
	return m
}

// WithMessage returns a footer with a transient message on line 2.
func (m FooterModel) WithMessage(msg string, isError bool) FooterModel {
	m.message, m.isError = msg, isError
	return m
}

// WithWidth returns a footer truncated to w cells.
func (m FooterModel) WithWidth(w int) FooterModel {
	m.width = w
	return m
}

// StatusLabel is the plain-text save indicator.
func StatusLabel(st autosave.Status) string {
	switch st.State {
	case autosave.Pending:
		return "unsaved changes"
	case autosave.Saving:
		return "saving…"
	case autosave.Saved:
		return "saved " + st.SavedAt.Format("15:04:05")
	case autosave.Invalid:
		n := 0
		if st.Result != nil {
			n = len(st.Result.Errors)
		}
		return fmt.Sprintf("not saved: %d invalid field(s)", n)
	case autosave.Failed:
		if st.RequestID == uuid.Nil {
			return fmt.Sprintf("save failed: %v", st.Err)
		}
		return fmt.Sprintf("save failed: %v (request %s)", st.Err, st.RequestID.String()[:8])
	}
	return ""
}

// View renders the two-line footer.
func (m FooterModel) View() string {
	s := Styles()

	var parts []string
	parts = append(parts, s.Title.Render(fmt.Sprintf("#%d %s", m.id, m.name)))
	if label := StatusLabel(m.status); label != "" {
		st := s.Secondary
		switch m.status.State {
		case autosave.Saved:
			st = s.Success
		case autosave.Invalid:
			st = s.Warning
		case autosave.Failed:
			st = s.Error
		}
		parts = append(parts, st.Render(label))
	}
	if m.uploading {
		parts = append(parts, s.Info.Render("uploading…"))
	}
	if m.preview {
		parts = append(parts, s.Info.Render("[preview]"))
	}
	line1 := strings.Join(parts, s.Muted.Render("  "))

	line2 := s.Dim.Render(m.hints)
	if m.message != "" {
		if m.isError {
			line2 = s.Error.Render(m.message)
		} else {
			line2 = s.Secondary.Render(m.message)
		}
	}

	if m.width > 0 {
		line1 = width.Truncate(line1, m.width)
		line2 = width.Truncate(line2, m.width)
	}
	return line1 + "\n" + line2
}

func keyHints(kb *config.Keybindings) string {
	hint := func(a config.KeyAction, label string) string {
		keys := kb.GetBindings(a)
		if len(keys) == 0 {
			return ""
		}
		return keys[0] + " " + label
	}
	var out []string
	for _, h := range []string{
		hint(config.ActionSave, "save"),
		hint(config.ActionNextField, "next field"),
		hint(config.ActionBold, "bold"),
		hint(config.ActionColor, "color"),
		hint(config.ActionTogglePreview, "preview"),
		hint(config.ActionUpload, "attach"),
		hint(config.ActionQuit, "quit"),
	} {
		if h != "" {
			out = append(out, h)
		}
	}
	return strings.Join(out, " · ")
}
