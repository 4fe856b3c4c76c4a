// ABOUTME: Root AppModel for the template editor TUI: form fields, rich-text content, preview
// ABOUTME: Routes keys to the mention list, bound actions or the focused field; all session calls run in Update

package interactive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mauromedda/contract-editor-go/internal/config"
	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/mauromedda/contract-editor-go/internal/editor"
	"github.com/mauromedda/contract-editor-go/internal/log"
	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/mention"
	"github.com/mauromedda/contract-editor-go/internal/template"
	"github.com/mauromedda/contract-editor-go/internal/width"
)

var logger = log.For("tui")

// AppDeps are the external dependencies of the TUI.
type AppDeps struct {
	Session     *editor.Session
	Keybindings *config.Keybindings

	// Directory and DirectoryFile enable reloading mentions when the file
	// changes on disk. Both are optional.
	Directory     directory.Source
	DirectoryFile string

	// OpenFile opens files chosen for upload; defaults to os.Open.
	OpenFile func(path string) (io.ReadCloser, error)
}

// focusTarget is a focusable row of the form.
type focusTarget int

const (
	focusName focusTarget = iota
	focusClient
	focusDate
	focusType
	focusTags
	focusActive
	focusAttachment
	focusContent
	focusCount
)

var focusFields = [focusCount]template.Field{
	focusName:       template.FieldName,
	focusClient:     template.FieldClientName,
	focusDate:       template.FieldContractDate,
	focusType:       template.FieldContractType,
	focusTags:       template.FieldTags,
	focusActive:     template.FieldIsActive,
	focusAttachment: template.FieldAttachments,
	focusContent:    template.FieldContent,
}

// labelWidth is the cell width of the form field labels.
const labelWidth = 11

var focusLabels = [focusCount]string{
	focusName:       "Name",
	focusClient:     "Client",
	focusDate:       "Date",
	focusType:       "Type",
	focusTags:       "Tags",
	focusActive:     "Active",
	focusAttachment: "Attachment",
	focusContent:    "Content",
}

type promptKind int

const (
	promptNone promptKind = iota
	promptColor
	promptUpload
	promptVariable
)

type prompt struct {
	kind  promptKind
	label string
	input LineInput
}

// shared holds state that must survive AppModel value copies. saved is set
// when the session ended on a valid explicit save.
type shared struct {
	program *tea.Program
	ctx     context.Context
	cancel  context.CancelFunc
	saved   bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	sh   *shared
	deps AppDeps
	s    *editor.Session
	kb   *config.Keybindings

	focus     focusTarget
	input     LineInput
	tagCursor int
	prompt    prompt
	preview   bool
	message   string
	isError   bool

	editor    EditorView
	mentions  MentionListModel
	footer    FooterModel
	previewer *PreviewRenderer

	width, height int
}

// NewAppModel creates an AppModel focused on the content editor.
func NewAppModel(deps AppDeps) AppModel {
	ctx, cancel := context.WithCancel(context.Background())
	if deps.Keybindings == nil {
		deps.Keybindings = config.NewKeybindings()
	}
	if deps.OpenFile == nil {
		deps.OpenFile = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	form := deps.Session.Form()
	m := AppModel{
		sh:        &shared{ctx: ctx, cancel: cancel},
		deps:      deps,
		s:         deps.Session,
		kb:        deps.Keybindings,
		editor:    NewEditorView(),
		mentions:  NewMentionListModel(),
		footer:    NewFooterModel(deps.Keybindings).WithTemplate(deps.Session.ID(), form.Values.Name),
		previewer: NewPreviewRenderer(),
	}
	return m.setFocus(focusContent)
}

// Init returns nil; no commands needed at startup.
func (m AppModel) Init() tea.Cmd {
	return nil
}

// Update handles keys, window size and background results.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.editor = m.editor.SetWidth(max(msg.Width-4, 10))
		m.mentions = m.mentions.SetWidth(msg.Width)
		m.footer = m.footer.WithWidth(msg.Width)
		return m, nil

	case StatusMsg:
		if msg.Status.Err != nil {
			m = m.say(StatusLabel(msg.Status), true)
		}
		return m, nil

	case UploadDoneMsg:
		ok, err := m.s.CompleteUpload(msg.Token, msg.Attachment, msg.Err)
		switch {
		case err != nil:
			m = m.say(err.Error(), true)
		case ok:
			m = m.say("attached "+msg.Attachment.Name, false)
		}
		return m, nil

	case PeopleMsg:
		if msg.Err != nil {
			logger.Warn("reloading directory: %v", msg.Err)
			return m.say("directory reload failed: "+msg.Err.Error(), true), nil
		}
		m.s.SetPeople(msg.People)
		m = m.refreshMentions()
		return m.say(fmt.Sprintf("directory reloaded (%d people)", len(msg.People)), false), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AppModel) say(msg string, isError bool) AppModel {
	m.message, m.isError = msg, isError
	return m
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt.kind != promptNone {
		return m.handlePrompt(msg)
	}
	m.message = ""

	if m.focus == focusContent && m.s.Mentions().Visible {
		if k, ok := mentionKey(msg.Type); ok {
			consumed, caret, committed := m.s.MentionKey(k)
			if committed {
				m.editor = m.editor.SetCaret(caret)
			}
			if consumed {
				// No Refresh here: it would reopen a list Escape just closed.
				m.mentions = m.mentions.SetState(m.s.Mentions(), m.s.MentionQuery())
				return m, nil
			}
		}
	}

	if action, ok := m.kb.ActionFor(msg.String()); ok {
		return m.runAction(action)
	}

	switch msg.Type {
	case tea.KeyTab:
		return m.setFocus((m.focus + 1) % focusCount), nil
	case tea.KeyShiftTab:
		return m.setFocus((m.focus + focusCount - 1) % focusCount), nil
	}

	switch m.focus {
	case focusContent:
		return m.handleContentKey(msg), nil
	case focusTags:
		return m.handleTagsKey(msg), nil
	case focusActive:
		if msg.Type == tea.KeySpace || msg.Type == tea.KeyEnter {
			return m.toggleActive(), nil
		}
	case focusAttachment:
		if msg.Type == tea.KeyEnter {
			return m.openPrompt(promptUpload, "File to attach"), nil
		}
	default:
		in, changed := m.input.Update(msg)
		m.input = in
		if changed {
			if err := m.s.SetText(focusFields[m.focus], in.Value()); err != nil {
				m = m.say(err.Error(), true)
			}
		}
	}
	return m, nil
}

func mentionKey(k tea.KeyType) (mention.Key, bool) {
	switch k {
	case tea.KeyUp:
		return mention.KeyUp, true
	case tea.KeyDown:
		return mention.KeyDown, true
	case tea.KeyEnter:
		return mention.KeyEnter, true
	case tea.KeyTab:
		return mention.KeyTab, true
	case tea.KeyEsc:
		return mention.KeyEscape, true
	}
	return 0, false
}

func (m AppModel) runAction(a config.KeyAction) (tea.Model, tea.Cmd) {
	switch a {
	case config.ActionQuit:
		m.sh.cancel()
		return m, tea.Quit
	case config.ActionSave:
		if err := m.s.Save(m.sh.ctx); err != nil {
			return m.say("not saved: "+err.Error(), true), nil
		}
		// A valid explicit save closes the editor and returns to the listing.
		m.sh.saved = true
		m.sh.cancel()
		return m.say("saved", false), tea.Quit
	case config.ActionBold:
		return m.format(markup.Bold), nil
	case config.ActionItalic:
		return m.format(markup.Italic), nil
	case config.ActionUnderline:
		return m.format(markup.Underline), nil
	case config.ActionColor:
		if m.focus != focusContent {
			return m.say("move to the content editor to color text", true), nil
		}
		return m.openPrompt(promptColor, "Color (#rrggbb or rgb(r,g,b))"), nil
	case config.ActionSelect:
		if m.focus == focusContent {
			m.editor = m.editor.ToggleSelect()
		}
	case config.ActionTogglePreview:
		m.preview = !m.preview
	case config.ActionPreviewVar:
		return m.openPrompt(promptVariable, "Preview variable (Name=value)"), nil
	case config.ActionNextField:
		return m.setFocus((m.focus + 1) % focusCount), nil
	case config.ActionPrevField:
		return m.setFocus((m.focus + focusCount - 1) % focusCount), nil
	case config.ActionToggleActive:
		return m.toggleActive(), nil
	case config.ActionUpload:
		return m.openPrompt(promptUpload, "File to attach"), nil
	case config.ActionReload:
		replaced, err := m.s.Reload(m.sh.ctx)
		if err != nil {
			return m.say(err.Error(), true), nil
		}
		m.editor = m.editor.SetCaret(min(m.editor.Caret(), m.s.Content().Len()))
		m = m.setFocus(m.focus)
		if !replaced {
			return m.say("reloaded fields; content kept while editing", false), nil
		}
		return m.say("reloaded", false), nil
	}
	return m, nil
}

func (m AppModel) format(mark markup.Mark) AppModel {
	if !m.s.Format(m.editor, mark) {
		return m.say("move to the content editor to format text", true)
	}
	return m
}

func (m AppModel) toggleActive() AppModel {
	if err := m.s.SetActive(!m.s.Form().Values.IsActive); err != nil {
		return m.say(err.Error(), true)
	}
	return m
}

// setFocus moves focus and reloads the line input from the form.
func (m AppModel) setFocus(f focusTarget) AppModel {
	m.focus = f
	m.editor = m.editor.SetFocused(f == focusContent)
	v := m.s.Form().Values
	switch f {
	case focusName:
		m.input = NewLineInput(v.Name)
	case focusClient:
		m.input = NewLineInput(v.ClientName)
	case focusDate:
		m.input = NewLineInput(v.ContractDate)
	case focusType:
		m.input = NewLineInput(v.ContractType)
	}
	return m.refreshMentions()
}

func (m AppModel) refreshMentions() AppModel {
	st := m.s.SelectionChanged(m.editor.Caret(), m.focus == focusContent)
	m.mentions = m.mentions.SetState(st, m.s.MentionQuery())
	return m
}

func (m AppModel) handleContentKey(msg tea.KeyMsg) AppModel {
	if v, ok := m.editor.Move(m.s.Content().Document(), msg.Type); ok {
		m.editor = v
		return m.refreshMentions()
	}

	sel, _ := m.editor.Selection()
	switch msg.Type {
	case tea.KeyRunes, tea.KeySpace, tea.KeyEnter:
		text := string(msg.Runes)
		switch msg.Type {
		case tea.KeySpace:
			text = " "
		case tea.KeyEnter:
			text = "\n"
		}
		caret := sel.Start
		if !sel.Collapsed() {
			caret, _ = m.s.Delete(sel)
		}
		caret, _ = m.s.Insert(caret, text)
		m.editor = m.editor.SetCaret(caret)
	case tea.KeyBackspace:
		if sel.Collapsed() {
			sel = markup.Range{Start: stepLeft(m.s.Content().Document(), sel.Start), End: sel.Start}
		}
		caret, _ := m.s.Delete(sel)
		m.editor = m.editor.SetCaret(caret)
	case tea.KeyDelete:
		if sel.Collapsed() {
			sel = markup.Range{Start: sel.Start, End: stepRight(m.s.Content().Document(), sel.Start)}
		}
		caret, _ := m.s.Delete(sel)
		m.editor = m.editor.SetCaret(caret)
	default:
		return m
	}
	m.s.Settle()
	return m.refreshMentions()
}

func (m AppModel) handleTagsKey(msg tea.KeyMsg) AppModel {
	tags := m.s.AvailableTags()
	if len(tags) == 0 {
		return m
	}
	switch msg.Type {
	case tea.KeyLeft:
		m.tagCursor = max(m.tagCursor-1, 0)
	case tea.KeyRight:
		m.tagCursor = min(m.tagCursor+1, len(tags)-1)
	case tea.KeySpace, tea.KeyEnter:
		if err := m.s.ToggleTag(tags[min(m.tagCursor, len(tags)-1)]); err != nil {
			return m.say(err.Error(), true)
		}
	}
	return m
}

func (m AppModel) openPrompt(kind promptKind, label string) AppModel {
	m.prompt = prompt{kind: kind, label: label, input: NewLineInput("")}
	return m
}

func (m AppModel) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = prompt{}
		return m, nil
	case tea.KeyEnter:
		p := m.prompt
		m.prompt = prompt{}
		return m.submitPrompt(p.kind, strings.TrimSpace(p.input.Value()))
	}
	m.prompt.input, _ = m.prompt.input.Update(msg)
	return m, nil
}

func (m AppModel) submitPrompt(kind promptKind, value string) (tea.Model, tea.Cmd) {
	switch kind {
	case promptColor:
		if _, err := m.s.Color(m.editor, value); err != nil {
			return m.say(err.Error(), true), nil
		}
	case promptVariable:
		name, val, ok := strings.Cut(value, "=")
		if !ok {
			return m.say("expected Name=value", true), nil
		}
		m.s.SetPreviewVariable(name, strings.TrimSpace(val))
		m.preview = true
	case promptUpload:
		if value == "" {
			return m, nil
		}
		tok := m.s.BeginUpload()
		return m, m.uploadCmd(tok, value)
	}
	return m, nil
}

// uploadCmd runs the upload off the Update goroutine. It touches only the
// uploader and the session's upload context, never session state.
func (m AppModel) uploadCmd(tok editor.UploadToken, path string) tea.Cmd {
	up, ctx, open := m.s.Uploader(), m.s.UploadContext(), m.deps.OpenFile
	return func() tea.Msg {
		f, err := open(path)
		if err != nil {
			return UploadDoneMsg{Token: tok, Err: fmt.Errorf("upload: %w", err)}
		}
		defer f.Close()
		att, err := up.Upload(ctx, filepath.Base(path), f)
		return UploadDoneMsg{Token: tok, Attachment: att, Err: err}
	}
}

// View renders the form, the editor, the optional preview and the footer.
func (m AppModel) View() string {
	s := Styles()
	form := m.s.Form()
	errs := make(map[template.Field]string)
	for _, e := range m.s.VisibleErrors() {
		if _, ok := errs[e.Field]; !ok {
			errs[e.Field] = e.Code
		}
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Contract template"))
	b.WriteByte('\n')

	for f := focusName; f < focusContent; f++ {
		label := width.Pad(focusLabels[f], labelWidth)
		if f == m.focus {
			b.WriteString(s.Focused.Render("› " + label))
		} else {
			b.WriteString(s.Label.Render("  " + label))
		}
		b.WriteString(m.fieldView(f, form.Values))
		if code, ok := errs[focusFields[f]]; ok {
			b.WriteString("  " + s.Error.Render(code))
		}
		b.WriteByte('\n')
	}

	contentLabel := s.Label.Render("  Content")
	if m.focus == focusContent {
		contentLabel = s.Focused.Render("› Content")
	}
	b.WriteString(contentLabel)
	if code, ok := errs[template.FieldContent]; ok {
		b.WriteString("  " + s.Error.Render(code))
	}
	b.WriteByte('\n')
	b.WriteString(s.Border.Render(m.editor.View(m.s.Content().Document())))
	if m.mentions.Visible() {
		b.WriteByte('\n')
		b.WriteString(m.mentions.View())
	}

	if m.preview {
		b.WriteString("\n\n")
		b.WriteString(s.Title.Render("Preview"))
		b.WriteByte('\n')
		b.WriteString(m.previewer.Render(m.s.RenderPreview(), max(m.width-2, 40)))
	}

	if m.prompt.kind != promptNone {
		b.WriteString("\n\n")
		b.WriteString(s.Info.Render(m.prompt.label+": ") + m.prompt.input.View(true))
	}

	footer := m.footer.
		WithStatus(m.s.Status()).
		WithUploading(m.s.Uploading()).
		WithPreview(m.preview).
		WithMessage(m.message, m.isError)
	b.WriteString("\n\n")
	b.WriteString(footer.View())
	return b.String()
}

func (m AppModel) fieldView(f focusTarget, v template.Form) string {
	s := Styles()
	focused := f == m.focus
	switch f {
	case focusTags:
		var parts []string
		for i, t := range m.s.AvailableTags() {
			st := s.Tag
			if slices.Contains(v.Tags, t) {
				st = s.TagOn
			}
			label := st.Render(" " + t + " ")
			if focused && i == m.tagCursor {
				label = s.Cursor.Render("[") + label + s.Cursor.Render("]")
			}
			parts = append(parts, label)
		}
		return strings.Join(parts, " ")
	case focusActive:
		if v.IsActive {
			return "[x] active"
		}
		return "[ ] inactive"
	case focusAttachment:
		if v.Attachments == nil {
			return s.Muted.Render("none (enter to attach)")
		}
		return v.Attachments.Name + " " + s.Muted.Render(v.Attachments.URL)
	}
	if focused {
		return m.input.View(true)
	}
	switch f {
	case focusName:
		return v.Name
	case focusClient:
		return v.ClientName
	case focusDate:
		return v.ContractDate
	case focusType:
		return v.ContractType
	}
	return ""
}

// Close cancels work started by the model.
func (m AppModel) Close() {
	m.sh.cancel()
}
