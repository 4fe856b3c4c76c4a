// ABOUTME: ContentModel owns one editor's markup document and its serialized form
// ABOUTME: User edits emit change events; external pushes reload silently and never while typing

package editor

import (
	"github.com/mauromedda/contract-editor-go/internal/eventbus"
	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/mention"
)

// Source tells subscribers where a content change came from.
type Source int

const (
	// SourceUser is typing, deletion or a mention commit.
	SourceUser Source = iota
	// SourceCommand is a formatting command.
	SourceCommand
)

// ContentChange is emitted after every user-originated mutation with the
// full re-serialized markup.
type ContentChange struct {
	HTML   string
	Source Source
}

// ContentModel is not safe for concurrent use.
type ContentModel struct {
	doc    *markup.Document
	html   string
	typing bool

	// pending is the style the next insertion at pendingAt uses, set when a
	// formatting command runs on a collapsed caret.
	pending   *markup.Style
	pendingAt int

	bus *eventbus.Bus[ContentChange]
}

// NewContentModel loads initial markup after sanitizing it.
func NewContentModel(initial string) *ContentModel {
	m := &ContentModel{bus: eventbus.New[ContentChange]()}
	m.load(initial)
	return m
}

func (m *ContentModel) load(content string) {
	m.doc = markup.MustParse(markup.Sanitize(content))
	m.html = m.doc.HTML()
	m.pending = nil
}

// Subscribe registers fn for content changes.
func (m *ContentModel) Subscribe(fn func(ContentChange)) func() {
	return m.bus.Subscribe(fn)
}

// HTML returns the canonical markup.
func (m *ContentModel) HTML() string { return m.html }

// Document returns a copy of the document for rendering.
func (m *ContentModel) Document() *markup.Document { return m.doc.Clone() }

// Len is the document length in runes, counting block separators.
func (m *ContentModel) Len() int { return m.doc.Len() }

// Typing reports whether a user edit is being processed.
func (m *ContentModel) Typing() bool { return m.typing }

// Settle ends the current input event; later external pushes apply again.
func (m *ContentModel) Settle() { m.typing = false }

// Push replaces the content from outside the editor (e.g. a form reset).
// It returns false and leaves the document alone when the markup is
// unchanged or the user is mid-edit. It never emits and never touches the
// typing flag.
func (m *ContentModel) Push(content string) bool {
	if m.typing {
		return false
	}
	next := markup.MustParse(markup.Sanitize(content))
	if next.HTML() == m.html {
		return false
	}
	m.doc = next
	m.html = next.HTML()
	m.pending = nil
	return true
}

// Insert types text at offset and returns the caret offset after it.
func (m *ContentModel) Insert(offset int, text string) int {
	offset = m.clamp(offset)
	style := m.doc.StyleAt(offset)
	if m.pending != nil && m.pendingAt == offset {
		style = *m.pending
	}
	m.pending = nil
	m.typing = true
	end := m.doc.Insert(offset, text, style)
	m.emit(SourceUser)
	return end
}

// Delete removes r and returns the caret offset (the start of r).
func (m *ContentModel) Delete(r markup.Range) int {
	r = m.clampRange(r)
	m.pending = nil
	if r.Collapsed() {
		return r.Start
	}
	m.typing = true
	m.doc.Delete(r)
	m.emit(SourceUser)
	return r.Start
}

// Replace swaps r for text, keeping the style of the replaced text's start,
// and returns the caret offset after the inserted text.
func (m *ContentModel) Replace(r markup.Range, text string) int {
	r = m.clampRange(r)
	style := m.doc.StyleAt(r.Start)
	if !r.Collapsed() {
		style = m.doc.StyleAt(r.Start + 1)
	}
	m.pending = nil
	m.typing = true
	m.doc.Delete(r)
	end := m.doc.Insert(r.Start, text, style)
	m.emit(SourceUser)
	return end
}

// CaretContext describes the paragraph holding offset for mention detection.
func (m *ContentModel) CaretContext(offset int) mention.Caret {
	blk, col := m.doc.Locate(m.clamp(offset))
	return mention.Caret{
		Text:   m.doc.BlockText(blk),
		Offset: col,
		Base:   m.doc.Offset(blk, 0),
	}
}

// mutate runs a formatting change and emits the result.
func (m *ContentModel) mutate(fn func(d *markup.Document)) {
	fn(m.doc)
	m.emit(SourceCommand)
}

// setPending arms a style for the next insertion at offset.
func (m *ContentModel) setPending(offset int, fn func(*markup.Style)) {
	offset = m.clamp(offset)
	s := m.doc.StyleAt(offset)
	if m.pending != nil && m.pendingAt == offset {
		s = *m.pending
	}
	fn(&s)
	m.pending = &s
	m.pendingAt = offset
}

// PendingStyle returns the armed style for offset, if any.
func (m *ContentModel) PendingStyle(offset int) (markup.Style, bool) {
	if m.pending == nil || m.pendingAt != offset {
		return markup.Style{}, false
	}
	return *m.pending, true
}

func (m *ContentModel) emit(src Source) {
	m.html = m.doc.HTML()
	m.bus.Publish(ContentChange{HTML: m.html, Source: src})
}

func (m *ContentModel) clamp(offset int) int {
	return min(max(offset, 0), m.doc.Len())
}

func (m *ContentModel) clampRange(r markup.Range) markup.Range {
	r = r.Normalize()
	return markup.Range{Start: m.clamp(r.Start), End: m.clamp(r.End)}
}
