// ABOUTME: Lipgloss palette for the template editor TUI
// ABOUTME: Styles() builds the palette once; markupStyle maps document styles to terminal styles

package interactive

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mauromedda/contract-editor-go/internal/markup"
)

// ThemeStyles holds pre-built lipgloss styles for every semantic role.
type ThemeStyles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Focused   lipgloss.Style
	Secondary lipgloss.Style
	Muted     lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	Border    lipgloss.Style
	Selection lipgloss.Style
	Cursor    lipgloss.Style
	Tag       lipgloss.Style
	TagOn     lipgloss.Style

	Bold lipgloss.Style
	Dim  lipgloss.Style
}

var (
	stylesOnce sync.Once
	styles     ThemeStyles
)

// Styles returns the shared palette.
func Styles() ThemeStyles {
	stylesOnce.Do(func() { styles = buildStyles() })
	return styles
}

func buildStyles() ThemeStyles {
	return ThemeStyles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Focused:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Secondary: lipgloss.NewStyle().Foreground(lipgloss.Color("247")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("81")),

		Border:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1),
		Selection: lipgloss.NewStyle().Background(lipgloss.Color("24")),
		Cursor:    lipgloss.NewStyle().Reverse(true),
		Tag:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		TagOn:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("114")),

		Bold: lipgloss.NewStyle().Bold(true),
		Dim:  lipgloss.NewStyle().Faint(true),
	}
}

// markupStyle renders a document style on the terminal. Colors are passed
// through as hex; lipgloss degrades them to the terminal's profile.
func markupStyle(st markup.Style) lipgloss.Style {
	s := lipgloss.NewStyle().
		Bold(st.Has(markup.Bold)).
		Italic(st.Has(markup.Italic)).
		Underline(st.Has(markup.Underline))
	if st.Color != "" {
		s = s.Foreground(lipgloss.Color(st.Color))
	}
	return s
}
