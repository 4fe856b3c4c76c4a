// ABOUTME: Tests for the template editor AppModel driven by synthetic key messages
// ABOUTME: Covers typing, mentions, formatting, field edits, uploads and save feedback

package interactive

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/mauromedda/contract-editor-go/internal/autosave"
	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/mauromedda/contract-editor-go/internal/editor"
	"github.com/mauromedda/contract-editor-go/internal/store"
	"github.com/mauromedda/contract-editor-go/internal/template"
	"github.com/mauromedda/contract-editor-go/internal/upload"
	"github.com/mauromedda/contract-editor-go/internal/validate"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var today = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

type fixture struct {
	app   AppModel
	store *store.Memory
	clock *autosave.ManualClock
}

func newFixture(t *testing.T, content string) fixture {
	t.Helper()
	doc := template.Document{
		ID:           7,
		Name:         "Master services",
		Content:      content,
		ClientName:   "Client A",
		ContractDate: "2025-12-01",
		ContractType: "Service",
		Attachments:  &template.Attachment{Name: "a.pdf", URL: "https://example.com/uploads/a.pdf"},
		Tags:         []string{"Urgent"},
		IsActive:     true,
	}
	st := store.NewMemory(doc)
	clock := autosave.NewManualClock(today)
	s, err := editor.Open(context.Background(), doc.ID, editor.Deps{
		Store:     st,
		Directory: directory.Default(),
		Uploader:  &upload.Simulated{BaseURL: "https://files.test/"},
		Gate:      validate.New(validate.WithNow(func() time.Time { return today }), validate.WithLocation(time.UTC)),
		Clock:     clock,
	}, editor.DefaultOptions())
	if err != nil {
		t.Fatalf("editor.Open: %v", err)
	}
	t.Cleanup(s.Close)

	app := NewAppModel(AppDeps{
		Session: s,
		OpenFile: func(path string) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("contents of " + path)), nil
		},
	})
	t.Cleanup(app.Close)
	return fixture{app: app, store: st, clock: clock}
}

func runes(s string) tea.KeyMsg    { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }
func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }
func alt(r rune) tea.KeyMsg        { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true} }

func send(t *testing.T, m AppModel, msgs ...tea.Msg) (AppModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(AppModel)
	}
	return m, cmd
}

func TestApp_TypingAutosaves(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>Hello</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd), runes("!"), key(tea.KeySpace), runes("ok"))

	if got, want := m.s.Content().HTML(), "<p>Hello! ok</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if m.editor.Caret() != 9 {
		t.Errorf("caret = %d, want 9", m.editor.Caret())
	}

	f.clock.Advance(autosave.DefaultQuietPeriod)
	doc, err := f.store.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "<p>Hello! ok</p>" {
		t.Errorf("stored content = %q", doc.Content)
	}
	if !strings.Contains(m.View(), "saved") {
		t.Error("footer should show the saved state")
	}
}

func TestApp_BackspaceAndNewline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd), key(tea.KeyBackspace), key(tea.KeyEnter), runes("x"))

	if got, want := m.s.Content().HTML(), "<p>ab</p><p>x</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestApp_BackspaceAndDeleteWholeCluster(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>ae\u0301</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd), key(tea.KeyBackspace))
	if got, want := m.s.Content().HTML(), "<p>a</p>"; got != want {
		t.Errorf("after backspace HTML() = %q, want %q", got, want)
	}

	f = newFixture(t, "<p>x\U0001F1EE\U0001F1F9y</p>")
	m, _ = send(t, f.app, key(tea.KeyHome), key(tea.KeyRight), key(tea.KeyDelete))
	if got, want := m.s.Content().HTML(), "<p>xy</p>"; got != want {
		t.Errorf("after delete HTML() = %q, want %q", got, want)
	}
	if m.editor.Caret() != 1 {
		t.Errorf("caret = %d, want 1", m.editor.Caret())
	}
}

func TestApp_MentionFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>Hi</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd), key(tea.KeySpace), runes("@"), runes("k"))

	if !m.mentions.Visible() {
		t.Fatal("mention list should be visible after @k")
	}
	view := m.View()
	for _, name := range []string{"@Kiran", "@Kishore"} {
		if !strings.Contains(view, name) {
			t.Errorf("view missing %s", name)
		}
	}

	m, _ = send(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	if got, want := m.s.Content().HTML(), "<p>Hi @Kishore </p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if m.mentions.Visible() {
		t.Error("list should close after commit")
	}
	if m.editor.Caret() != len("Hi @Kishore ") {
		t.Errorf("caret = %d", m.editor.Caret())
	}
}

func TestApp_MentionEscapeThenEnterInserts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>@</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd))
	if !m.mentions.Visible() {
		t.Fatal("bare @ should open the list")
	}
	m, _ = send(t, m, key(tea.KeyEsc))
	if m.mentions.Visible() {
		t.Fatal("esc should close the list")
	}
	m, _ = send(t, m, key(tea.KeyEnter))
	if got, want := m.s.Content().HTML(), "<p>@</p><p><br></p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestApp_BoldSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc def</p>")
	m, _ := send(t, f.app,
		key(tea.KeyHome),
		key(tea.KeyShiftRight), key(tea.KeyShiftRight), key(tea.KeyShiftRight),
		alt('b'),
	)
	if got, want := m.s.Content().HTML(), "<p><b>abc</b> def</p>"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestApp_StickySelectAndColor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc def</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd), key(tea.KeyCtrlAt), key(tea.KeyLeft), key(tea.KeyLeft), key(tea.KeyLeft), alt('c'))
	if m.prompt.kind != promptColor {
		t.Fatalf("prompt = %v, want color", m.prompt.kind)
	}
	m, _ = send(t, m, runes("#0f0"), key(tea.KeyEnter))
	if got, want := m.s.Content().HTML(), `<p>abc <span style="color: #00ff00">def</span></p>`; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}

	m, _ = send(t, m, alt('c'), runes("nope"), key(tea.KeyEnter))
	if !m.isError || !strings.Contains(m.message, "invalid color") {
		t.Errorf("message = %q", m.message)
	}
}

func TestApp_FormatOutsideEditor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m := f.app.setFocus(focusName)
	m, _ = send(t, m, alt('b'))
	if !m.isError {
		t.Error("formatting outside the editor should report an error")
	}
	if m.s.Content().HTML() != "<p>abc</p>" {
		t.Errorf("content changed: %q", m.s.Content().HTML())
	}
}

func TestApp_TextFieldEdit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m := f.app.setFocus(focusClient)
	m, _ = send(t, m, key(tea.KeyBackspace), runes("B"))

	if got := m.s.Form().Values.ClientName; got != "Client B" {
		t.Errorf("ClientName = %q", got)
	}
	if !m.s.Form().Touched.Has(template.FieldClientName) {
		t.Error("client name should be touched")
	}
	if m.mentions.Visible() {
		t.Error("mention list must stay hidden outside the editor")
	}
}

func TestApp_ClearedFieldShowsError(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m := f.app.setFocus(focusType)
	for range len("Service") {
		m, _ = send(t, m, key(tea.KeyBackspace))
	}
	if !strings.Contains(m.View(), validate.CodeRequired) {
		t.Error("view should flag the cleared field")
	}

	m, cmd := send(t, m, key(tea.KeyCtrlS))
	if !m.isError || !strings.HasPrefix(m.message, "not saved") {
		t.Errorf("message = %q", m.message)
	}
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("an invalid save must keep the editor open")
		}
	}
	if m.sh.saved || m.sh.ctx.Err() != nil {
		t.Error("session should stay open after an invalid save")
	}
}

func TestApp_SaveReturnsToListing(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m, cmd := send(t, f.app, key(tea.KeyEnd), runes("d"), key(tea.KeyCtrlS))
	if m.isError || m.message != "saved" {
		t.Fatalf("message = %q (error %v)", m.message, m.isError)
	}
	if cmd == nil {
		t.Fatal("expected quit command after a valid save")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("a valid save should close the editor")
	}
	if !m.sh.saved {
		t.Error("exit should report the save")
	}
	if m.sh.ctx.Err() == nil {
		t.Error("session context should be cancelled")
	}

	doc, err := f.store.Fetch(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Content != "<p>abcd</p>" {
		t.Errorf("stored content = %q", doc.Content)
	}
}

func TestApp_FieldLabelsAligned(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	view := f.app.View()
	for _, label := range []string{"Name       ", "Client     ", "Attachment "} {
		if !strings.Contains(view, "  "+label) {
			t.Errorf("view lacks padded label %q", label)
		}
	}
}

func TestApp_TagsAndActive(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m := f.app.setFocus(focusTags)
	m, _ = send(t, m, key(tea.KeyRight), key(tea.KeySpace))
	if diff := cmp.Diff([]string{"Urgent", "Important"}, m.s.Form().Values.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	m, _ = send(t, m, alt('a'))
	if m.s.Form().Values.IsActive {
		t.Error("alt+a should toggle isActive off")
	}
}

func TestApp_Upload(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	m, _ := send(t, f.app, key(tea.KeyCtrlU))
	if m.prompt.kind != promptUpload {
		t.Fatalf("prompt = %v, want upload", m.prompt.kind)
	}
	m, cmd := send(t, m, runes("/tmp/scope.pdf"), key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected an upload command")
	}
	if !m.s.Uploading() {
		t.Error("upload should be outstanding")
	}

	m, _ = send(t, m, cmd())
	want := &template.Attachment{Name: "scope.pdf", URL: "https://files.test/scope.pdf"}
	if diff := cmp.Diff(want, m.s.Form().Values.Attachments); diff != "" {
		t.Errorf("attachment mismatch (-want +got):\n%s", diff)
	}
	if m.message != "attached scope.pdf" {
		t.Errorf("message = %q", m.message)
	}
}

func TestApp_PreviewVariable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>For {{Client Name}} re {{Project}}</p>")
	m, _ := send(t, f.app, alt('v'), runes("Project=Apollo"), key(tea.KeyEnter))

	if !m.preview {
		t.Error("setting a variable should open the preview")
	}
	if got := m.s.RenderPreview(); got != "<p>For Client A re Apollo</p>" {
		t.Errorf("RenderPreview() = %q", got)
	}
}

func TestApp_PeopleReload(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>@z</p>")
	m, _ := send(t, f.app, key(tea.KeyEnd))
	if m.mentions.Visible() {
		t.Fatal("no one matches z yet")
	}
	m, _ = send(t, m, PeopleMsg{People: directory.Names("Zoe")})
	if !m.mentions.Visible() {
		t.Error("reloaded directory should match @z")
	}
}

func TestApp_Quit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "<p>abc</p>")
	_, cmd := send(t, f.app, key(tea.KeyCtrlQ))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+q should quit")
	}
}
