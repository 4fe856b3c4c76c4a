// ABOUTME: Custom tea.Msg types for the template editor TUI
// ABOUTME: Autosave status, upload completion and directory reloads arrive via Program.Send or tea.Cmd

package interactive

import (
	"github.com/mauromedda/contract-editor-go/internal/autosave"
	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/mauromedda/contract-editor-go/internal/editor"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

// StatusMsg carries an autosave status change from the pipeline.
type StatusMsg struct{ Status autosave.Status }

// UploadDoneMsg carries the result of one upload attempt.
type UploadDoneMsg struct {
	Token      editor.UploadToken
	Attachment template.Attachment
	Err        error
}

// PeopleMsg carries a reloaded mention directory.
type PeopleMsg struct {
	People []directory.Person
	Err    error
}
