// ABOUTME: Entry point for the Bubble Tea template editor
// ABOUTME: Creates the tea.Program, bridges autosave status and directory reloads into it

package interactive

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mauromedda/contract-editor-go/internal/autosave"
	"github.com/mauromedda/contract-editor-go/internal/config"
)

// Exit reports how an editor session ended.
type Exit struct {
	// Saved is true when the user closed the editor with a valid save.
	Saved bool
}

// Run starts the editor and blocks until the user quits or ctx ends.
func Run(ctx context.Context, deps AppDeps) (Exit, error) {
	m := NewAppModel(deps)
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	)
	// The model is copied into the program; the shared pointer is not.
	m.sh.program = p

	unsub := deps.Session.SubscribeStatus(func(st autosave.Status) {
		p.Send(StatusMsg{Status: st})
	})
	defer unsub()

	if deps.Directory != nil && deps.DirectoryFile != "" {
		wctx, cancel := context.WithCancel(ctx)
		w := config.NewWatcher([]string{deps.DirectoryFile}, func([]string) {
			people, err := deps.Directory.People(wctx)
			p.Send(PeopleMsg{People: people, Err: err})
		})
		w.Start(wctx)
		defer w.Wait()
		defer cancel()
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return Exit{}, fmt.Errorf("bubble tea: %w", err)
	}
	return Exit{Saved: m.sh.saved}, nil
}
