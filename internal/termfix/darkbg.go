// ABOUTME: Fixes the lipgloss background guess before bubbletea's init() can query the terminal
// ABOUTME: Import with _ from main ahead of the editor packages

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// Once a background is set explicitly, lipgloss skips the OSC 10/11
	// query whose late reply would otherwise be read as typed text in the
	// template editor. This package must not import bubbletea.
	lipgloss.SetHasDarkBackground(true)
}
