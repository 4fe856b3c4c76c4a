// ABOUTME: MentionListModel renders the @mention suggestion list under the editor
// ABOUTME: Display only; selection state comes from the session's mention controller

package interactive

import (
	"fmt"
	"strings"

	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/mauromedda/contract-editor-go/internal/mention"
	"github.com/mauromedda/contract-editor-go/internal/width"
)

// MentionListModel shows the visible candidates with the active one
// highlighted, scrolled so the active row stays in view.
type MentionListModel struct {
	state     mention.State
	query     string
	scrollOff int
	maxHeight int
	width     int
}

// NewMentionListModel creates an empty list.
func NewMentionListModel() MentionListModel {
	return MentionListModel{maxHeight: 6}
}

// SetState returns a model showing st for the typed query.
func (m MentionListModel) SetState(st mention.State, query string) MentionListModel {
	if query != m.query || !st.Visible {
		m.scrollOff = 0
	}
	m.state = st
	m.query = query
	m.adjustScroll()
	return m
}

// SetWidth returns a model truncating rows to w cells.
func (m MentionListModel) SetWidth(w int) MentionListModel {
	m.width = w
	return m
}

// SetMaxHeight limits the number of visible rows.
func (m MentionListModel) SetMaxHeight(h int) MentionListModel {
	m.maxHeight = max(h, 1)
	m.adjustScroll()
	return m
}

// Visible reports whether the list should be drawn.
func (m MentionListModel) Visible() bool { return m.state.Visible }

func (m *MentionListModel) adjustScroll() {
	sel := m.state.ActiveIndex
	if sel < m.scrollOff {
		m.scrollOff = sel
	}
	if sel >= m.scrollOff+m.maxHeight {
		m.scrollOff = sel - m.maxHeight + 1
	}
}

// View renders the header and candidate rows, or nothing when hidden.
func (m MentionListModel) View() string {
	if !m.state.Visible {
		return ""
	}
	s := Styles()
	var b strings.Builder

	header := "  People"
	if m.query != "" {
		header += fmt.Sprintf(" matching %q", m.query)
	}
	b.WriteString(s.Dim.Render(header))

	end := min(m.scrollOff+m.maxHeight, len(m.state.Candidates))
	for i := m.scrollOff; i < end; i++ {
		b.WriteByte('\n')
		b.WriteString(formatPerson(s, m.state.Candidates[i], m.width, i == m.state.ActiveIndex))
	}
	if rest := len(m.state.Candidates) - end; rest > 0 {
		b.WriteByte('\n')
		b.WriteString(s.Muted.Render(fmt.Sprintf("  … %d more", rest)))
	}
	return b.String()
}

func formatPerson(s ThemeStyles, p directory.Person, w int, selected bool) string {
	line := "  @" + p.Name
	if p.Title != "" {
		line += "  " + s.Secondary.Render(p.Title)
	}
	if w > 0 {
		line = width.Truncate(line, w)
	}
	if selected {
		line = s.Bold.Render(s.Selection.Render(line))
	}
	return line
}
