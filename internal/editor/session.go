// ABOUTME: Session is one open template: form state, rich-text content, mentions, autosave, preview
// ABOUTME: Single-owner; only the autosave pipeline and uploads run off the caller's goroutine

package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/mauromedda/contract-editor-go/internal/autosave"
	"github.com/mauromedda/contract-editor-go/internal/directory"
	"github.com/mauromedda/contract-editor-go/internal/interpolate"
	"github.com/mauromedda/contract-editor-go/internal/log"
	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/mention"
	"github.com/mauromedda/contract-editor-go/internal/template"
	"github.com/mauromedda/contract-editor-go/internal/upload"
	"github.com/mauromedda/contract-editor-go/internal/validate"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = errors.New("editor session closed")

var logger = log.For("editor")

// Deps are the collaborators a session needs.
type Deps struct {
	Store     template.Store
	Directory directory.Source
	Uploader  upload.Uploader
	Gate      validate.Checker
	Clock     autosave.Clock
}

// Options tune a session.
type Options struct {
	QuietPeriod    time.Duration
	MatchMode      mention.MatchMode
	CommitPolicy   mention.CommitPolicy
	HonorOverrides bool
	AvailableTags  []string
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		QuietPeriod:    autosave.DefaultQuietPeriod,
		HonorOverrides: true,
		AvailableTags:  slices.Clone(template.DefaultTags),
	}
}

// UploadToken identifies one upload attempt; only the newest is honored.
type UploadToken uint64

// Session edits one template.
type Session struct {
	id      int64
	opts    Options
	store   template.Store
	form    FormState
	content *ContentModel
	ctrl    *mention.Controller
	save    *autosave.Pipeline
	editSeq uint64 // request seq current at the last edit
	gate    validate.Checker
	up      upload.Uploader

	overrides map[string]string
	uploadGen UploadToken
	uploading bool
	closed    bool

	ctx    context.Context
	cancel context.CancelFunc
}

// Open fetches template id and the mention directory concurrently, then
// populates the form without triggering autosave.
func Open(ctx context.Context, id int64, deps Deps, opts Options) (*Session, error) {
	if deps.Store == nil {
		return nil, errors.New("open: store is required")
	}
	if deps.Directory == nil {
		deps.Directory = directory.Default()
	}
	if deps.Uploader == nil {
		deps.Uploader = upload.NewSimulated()
	}
	if deps.Gate == nil {
		deps.Gate = validate.New()
	}

	var (
		doc    template.Document
		people []directory.Person
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := deps.Store.Fetch(gctx, id)
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	g.Go(func() error {
		p, err := deps.Directory.People(gctx)
		if err != nil {
			return fmt.Errorf("loading directory: %w", err)
		}
		people = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("open template %d: %w", id, err)
	}

	pipeOpts := []autosave.Option{autosave.WithQuietPeriod(opts.QuietPeriod)}
	if deps.Clock != nil {
		pipeOpts = append(pipeOpts, autosave.WithClock(deps.Clock))
	}

	s := &Session{
		id:        id,
		opts:      opts,
		store:     deps.Store,
		gate:      deps.Gate,
		up:        deps.Uploader,
		overrides: make(map[string]string),
		ctrl: mention.NewController(people,
			mention.WithMatchMode(opts.MatchMode),
			mention.WithCommitPolicy(opts.CommitPolicy)),
		save: autosave.New(id, deps.Store, deps.Gate, pipeOpts...),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.save.SetInitializing(true)
	s.form = FormState{Values: template.FormFromDocument(doc), Initializing: true}
	s.content = NewContentModel(doc.Content)
	s.content.Subscribe(s.onContent)
	s.form.Initializing = false
	s.save.SetInitializing(false)

	logger.Debug("opened template %d (%d people)", id, len(people))
	return s, nil
}

func (s *Session) onContent(c ContentChange) {
	if s.closed {
		return
	}
	s.form.Values.Content = c.HTML
	s.form.touch(template.FieldContent)
	s.notify()
}

func (s *Session) notify() {
	if s.form.Initializing {
		return
	}
	s.save.Notify(template.FullUpdate(s.form.Values))
	s.editSeq = s.save.Status().Seq
}

// Reload fetches the stored template and resets the form to it without
// scheduling a save. Content is left alone while the user is mid-edit; the
// return value reports whether it was replaced.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	doc, err := s.store.Fetch(ctx, s.id)
	if err != nil {
		return false, fmt.Errorf("reload template %d: %w", s.id, err)
	}

	s.save.SetInitializing(true)
	defer s.save.SetInitializing(false)
	s.form.Initializing = true
	defer func() { s.form.Initializing = false }()

	keep := s.form.Values.Content
	s.form.Values = template.FormFromDocument(doc)
	pushed := s.content.Push(doc.Content)
	if !pushed && s.content.Typing() {
		s.form.Values.Content = keep
	}
	s.form.Dirty = false
	s.form.Touched = 0
	s.ctrl.Hide()
	return pushed, nil
}

// ID returns the template id.
func (s *Session) ID() int64 { return s.id }

// Form returns a copy of the form state. Dirty drops once a save issued
// after the last edit has completed.
func (s *Session) Form() FormState {
	if s.form.Dirty {
		if st := s.save.Status(); st.State == autosave.Saved && st.Seq > s.editSeq {
			s.form.Dirty = false
		}
	}
	return s.form.Clone()
}

// Content exposes the rich-text model for rendering.
func (s *Session) Content() *ContentModel { return s.content }

// AvailableTags is the selectable tag vocabulary.
func (s *Session) AvailableTags() []string { return slices.Clone(s.opts.AvailableTags) }

// Edit changes one non-content field through fn and schedules an autosave.
func (s *Session) Edit(field template.Field, fn func(f *template.Form)) error {
	if s.closed {
		return ErrClosed
	}
	if field == template.FieldContent {
		return errors.New("edit: content changes go through the content model")
	}
	fn(&s.form.Values)
	s.form.touch(field)
	s.notify()
	return nil
}

// SetText sets a plain-text field.
func (s *Session) SetText(field template.Field, v string) error {
	return s.Edit(field, func(f *template.Form) {
		switch field {
		case template.FieldName:
			f.Name = v
		case template.FieldClientName:
			f.ClientName = v
		case template.FieldContractDate:
			f.ContractDate = v
		case template.FieldContractType:
			f.ContractType = v
		}
	})
}

// ToggleTag adds or removes tag.
func (s *Session) ToggleTag(tag string) error {
	return s.Edit(template.FieldTags, func(f *template.Form) {
		f.Tags = template.ToggleTag(f.Tags, tag)
	})
}

// SetActive sets the isActive flag.
func (s *Session) SetActive(on bool) error {
	return s.Edit(template.FieldIsActive, func(f *template.Form) { f.IsActive = on })
}

// Insert types text at offset and returns the new caret offset.
func (s *Session) Insert(offset int, text string) (int, error) {
	if s.closed {
		return offset, ErrClosed
	}
	return s.content.Insert(offset, text), nil
}

// Delete removes r and returns the new caret offset.
func (s *Session) Delete(r markup.Range) (int, error) {
	if s.closed {
		return r.Normalize().Start, ErrClosed
	}
	return s.content.Delete(r), nil
}

// Settle marks the end of an input event.
func (s *Session) Settle() { s.content.Settle() }

// SelectionChanged recomputes the mention list for the caret at offset.
// It must run on every caret move, not only on typing.
func (s *Session) SelectionChanged(offset int, focused bool) mention.State {
	return s.ctrl.Refresh(mention.CaretFunc(func() (mention.Caret, bool) {
		if !focused {
			return mention.Caret{}, false
		}
		return s.content.CaretContext(offset), true
	}))
}

// SetPeople replaces the mention directory, e.g. after the directory file
// changed on disk.
func (s *Session) SetPeople(people []directory.Person) { s.ctrl.SetPeople(people) }

// MentionQuery returns the text typed after '@' while the list is open.
func (s *Session) MentionQuery() string {
	if q, ok := s.ctrl.Query(); ok {
		return q.Text
	}
	return ""
}

// Mentions returns the suggestion list state.
func (s *Session) Mentions() mention.State { return s.ctrl.State() }

// MentionKey routes a navigation key to the suggestion list. When the key
// commits a candidate the mention text is written and caret holds the new
// caret offset.
func (s *Session) MentionKey(k mention.Key) (consumed bool, caret int, committed bool) {
	consumed, cm := s.ctrl.Key(k)
	if cm == nil || s.closed {
		return consumed, 0, false
	}
	return true, s.applyCommit(*cm), true
}

// SelectMention commits candidate i (pointer selection).
func (s *Session) SelectMention(i int) (int, bool) {
	cm, ok := s.ctrl.Select(i)
	if !ok || s.closed {
		return 0, false
	}
	return s.applyCommit(cm), true
}

func (s *Session) applyCommit(cm mention.Commit) int {
	from, to := cm.Range()
	end := s.content.Replace(markup.Range{Start: from, End: to}, cm.Text)
	s.content.Settle()
	return end
}

// Format toggles an inline mark on the surface's selection.
func (s *Session) Format(surface Surface, mark markup.Mark) bool {
	if s.closed {
		return false
	}
	return NewCommandExecutor(surface, s.content).ApplyInline(mark)
}

// Color applies a text color to the surface's selection.
func (s *Session) Color(surface Surface, color string) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	return NewCommandExecutor(surface, s.content).ApplyColor(color)
}

// BeginUpload starts an upload attempt and returns its token. A newer
// attempt makes older tokens stale.
func (s *Session) BeginUpload() UploadToken {
	s.uploadGen++
	s.uploading = true
	return s.uploadGen
}

// Uploading reports whether the newest upload is still outstanding.
func (s *Session) Uploading() bool { return s.uploading }

// CompleteUpload records the result of attempt tok. Results of stale
// attempts or arriving after Close are dropped and false is returned.
func (s *Session) CompleteUpload(tok UploadToken, att template.Attachment, err error) (bool, error) {
	if s.closed || tok != s.uploadGen {
		logger.Debug("dropped upload result for token %d", tok)
		return false, nil
	}
	s.uploading = false
	if err != nil {
		return false, err
	}
	a := att
	s.form.Values.Attachments = &a
	s.form.touch(template.FieldAttachments)
	s.notify()
	return true, nil
}

// UploadContext is cancelled when the session closes.
func (s *Session) UploadContext() context.Context { return s.ctx }

// Uploader returns the configured uploader for hosts that run uploads
// asynchronously.
func (s *Session) Uploader() upload.Uploader { return s.up }

// Upload runs one upload synchronously and records its result.
func (s *Session) Upload(ctx context.Context, name string, r io.Reader) error {
	if s.closed {
		return ErrClosed
	}
	tok := s.BeginUpload()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()
	att, err := s.up.Upload(ctx, name, r)
	_, err = s.CompleteUpload(tok, att, err)
	return err
}

// Validate checks the current form.
func (s *Session) Validate() *validate.Result {
	return s.gate.Check(s.form.Values)
}

// VisibleErrors are the failures of touched fields only.
func (s *Session) VisibleErrors() []validate.FieldError {
	var out []validate.FieldError
	for _, e := range s.Validate().Errors {
		if s.form.Touched.Has(e.Field) {
			out = append(out, e)
		}
	}
	return out
}

// Save persists immediately. An invalid form marks every field touched and
// returns the *validate.Result.
func (s *Session) Save(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	err := s.save.SaveNow(ctx, template.FullUpdate(s.form.Values))
	var res *validate.Result
	if errors.As(err, &res) {
		s.form.Touched = template.All
		return err
	}
	if err == nil {
		s.form.Dirty = false
	}
	return err
}

// Status returns the autosave indicator.
func (s *Session) Status() autosave.Status { return s.save.Status() }

// SubscribeStatus registers fn for autosave status changes. fn runs on the
// pipeline's goroutines.
func (s *Session) SubscribeStatus(fn func(autosave.Status)) func() {
	return s.save.Subscribe(fn)
}

// PreviewVariables lists the placeholders in the current content.
func (s *Session) PreviewVariables() []string {
	return interpolate.Extract(s.form.Values.Content)
}

// PreviewOverrides returns a copy of the user overrides.
func (s *Session) PreviewOverrides() map[string]string { return maps.Clone(s.overrides) }

// SetPreviewVariable stores a user override; an empty value clears it.
func (s *Session) SetPreviewVariable(name, value string) {
	name = strings.TrimSpace(name)
	if value == "" {
		delete(s.overrides, name)
		return
	}
	s.overrides[name] = value
}

// RenderPreview substitutes placeholders in the current content.
func (s *Session) RenderPreview() string {
	return interpolate.Render(s.form.Values.Content,
		interpolate.ValuesFromForm(s.form.Values),
		interpolate.Options{HonorOverrides: s.opts.HonorOverrides, Overrides: s.overrides})
}

// Close abandons pending autosave work and drops late upload results.
// There is no final flush.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	s.save.Close()
}
