// ABOUTME: Debounced, validation-gated autosave with a single pending slot per document
// ABOUTME: Sequence-stamped requests so superseded or post-close completions never win

package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mauromedda/contract-editor-go/internal/eventbus"
	"github.com/mauromedda/contract-editor-go/internal/log"
	"github.com/mauromedda/contract-editor-go/internal/template"
	"github.com/mauromedda/contract-editor-go/internal/validate"
)

// DefaultQuietPeriod is how long edits must pause before a save fires.
const DefaultQuietPeriod = 800 * time.Millisecond

// ErrClosed is returned by SaveNow after Close.
var ErrClosed = errors.New("autosave pipeline closed")

// ErrSuperseded is returned by SaveNow when a later save was dispatched
// before this one reached the store.
var ErrSuperseded = errors.New("save superseded by a later request")

var logger = log.For("autosave")

// State is the coarse save indicator.
type State int

const (
	Idle State = iota
	Pending
	Saving
	Saved
	Invalid
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Saving:
		return "saving"
	case Saved:
		return "saved"
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	}
	return "idle"
}

// Status is a snapshot of the pipeline for display. RequestID names the
// request behind a Saving, Saved or Failed state.
type Status struct {
	State     State
	Seq       uint64
	RequestID uuid.UUID
	Err       error
	Result    *validate.Result
	SavedAt   time.Time
}

// Request is one persistence call.
type Request struct {
	ID         uuid.UUID
	DocumentID int64
	Seq        uint64
	Payload    template.Update
	IssuedAt   time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock injects the timer source.
func WithClock(c Clock) Option { return func(p *Pipeline) { p.clock = c } }

// WithQuietPeriod overrides the debounce interval.
func WithQuietPeriod(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.quiet = d
		}
	}
}

// Pipeline debounces form changes into persistence calls for one document.
type Pipeline struct {
	docID     int64
	persister template.Persister
	checker   validate.Checker
	clock     Clock
	quiet     time.Duration
	bus       *eventbus.Bus[Status]

	ctx    context.Context
	cancel context.CancelFunc

	// sendMu serializes store calls so they reach the store in Seq order.
	sendMu sync.Mutex

	mu           sync.Mutex
	timer        Timer
	gen          uint64
	pending      *template.Update
	initializing bool
	seq          uint64
	status       Status
	closed       bool
	inflight     sync.WaitGroup
}

// New creates a pipeline for document docID.
func New(docID int64, persister template.Persister, checker validate.Checker, opts ...Option) *Pipeline {
	p := &Pipeline{
		docID:     docID,
		persister: persister,
		checker:   checker,
		clock:     wallClock{},
		quiet:     DefaultQuietPeriod,
		bus:       eventbus.New[Status](),
	}
	for _, o := range opts {
		o(p)
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p
}

// Subscribe registers fn for status changes and returns an unsubscribe func.
func (p *Pipeline) Subscribe(fn func(Status)) func() {
	return p.bus.Subscribe(fn)
}

// Status returns the current status.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// HasPending reports whether a change is waiting for the quiet period.
func (p *Pipeline) HasPending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// SetInitializing suppresses autosave while the form is being populated
// from a fetched document. Entering the state drops any pending change.
func (p *Pipeline) SetInitializing(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initializing = on
	if on {
		p.stopLocked()
	}
}

// Notify records u as the latest form value and restarts the quiet timer.
// Only the most recent value is kept.
func (p *Pipeline) Notify(u template.Update) {
	p.mu.Lock()
	if p.closed || p.initializing {
		p.mu.Unlock()
		return
	}
	p.stopLocked()
	p.pending = &u
	g := p.gen
	p.timer = p.clock.AfterFunc(p.quiet, func() { p.fire(g) })
	st := p.setLocked(Status{State: Pending, Seq: p.seq, SavedAt: p.status.SavedAt})
	p.mu.Unlock()
	p.bus.Publish(st)
}

// stopLocked cancels the armed timer and clears the pending slot.
func (p *Pipeline) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	p.pending = nil
}

func (p *Pipeline) setLocked(s Status) Status {
	p.status = s
	return s
}

func (p *Pipeline) fire(g uint64) {
	p.mu.Lock()
	if p.closed || g != p.gen || p.pending == nil {
		p.mu.Unlock()
		return
	}
	u := *p.pending
	p.pending = nil
	p.timer = nil
	if p.initializing {
		p.mu.Unlock()
		return
	}
	if r := p.checker.Check(u.Form); !r.Valid() {
		st := p.setLocked(Status{State: Invalid, Seq: p.seq, Result: r, SavedAt: p.status.SavedAt})
		p.mu.Unlock()
		logger.Debug("doc %d: skipped, %v", p.docID, r)
		p.bus.Publish(st)
		return
	}
	req, st := p.issueLocked(u)
	p.mu.Unlock()
	p.bus.Publish(st)

	_ = p.dispatch(p.ctx, req)
}

// issueLocked stamps a new request and marks it in flight.
func (p *Pipeline) issueLocked(u template.Update) (Request, Status) {
	p.seq++
	req := Request{
		ID:         uuid.New(),
		DocumentID: p.docID,
		Seq:        p.seq,
		Payload:    u,
		IssuedAt:   p.clock.Now(),
	}
	p.inflight.Add(1)
	return req, p.setLocked(Status{State: Saving, Seq: req.Seq, RequestID: req.ID, SavedAt: p.status.SavedAt})
}

func (p *Pipeline) superseded(seq uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return seq < p.seq
}

func (p *Pipeline) dispatch(ctx context.Context, req Request) error {
	done := false
	finish := func() {
		if !done {
			done = true
			p.inflight.Done()
		}
	}
	defer finish()

	p.sendMu.Lock()
	if p.superseded(req.Seq) {
		p.sendMu.Unlock()
		logger.Debug("doc %d: request %d superseded before send", p.docID, req.Seq)
		return ErrSuperseded
	}
	logger.Debug("doc %d: persisting request %d (%s) fields=%s", p.docID, req.Seq, req.ID, req.Payload.Changed)
	err := p.persister.Persist(ctx, req.DocumentID, req.Payload)
	p.sendMu.Unlock()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		logger.Debug("doc %d: dropped completion of %d after close", p.docID, req.Seq)
		return ErrClosed
	}
	if req.Seq < p.seq {
		p.mu.Unlock()
		logger.Debug("doc %d: dropped stale completion of %d", p.docID, req.Seq)
		return ErrSuperseded
	}
	var st Status
	if err != nil {
		st = p.setLocked(Status{State: Failed, Seq: req.Seq, RequestID: req.ID, Err: err, SavedAt: p.status.SavedAt})
	} else {
		st = p.setLocked(Status{State: Saved, Seq: req.Seq, RequestID: req.ID, SavedAt: p.clock.Now()})
	}
	p.mu.Unlock()
	finish()

	if err != nil {
		logger.Warn("doc %d: request %s failed: %v", p.docID, req.ID, err)
	}
	p.bus.Publish(st)
	return err
}

// SaveNow validates u synchronously. An invalid form returns the
// *validate.Result as the error and nothing is sent. A valid form cancels
// any pending debounce, is dispatched immediately, and SaveNow waits for
// the store's answer.
func (p *Pipeline) SaveNow(ctx context.Context, u template.Update) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if r := p.checker.Check(u.Form); !r.Valid() {
		st := p.setLocked(Status{State: Invalid, Seq: p.seq, Result: r, SavedAt: p.status.SavedAt})
		p.mu.Unlock()
		p.bus.Publish(st)
		return r
	}
	p.stopLocked()
	req, st := p.issueLocked(u)
	p.mu.Unlock()
	p.bus.Publish(st)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(p.ctx, cancel)
	defer stop()
	return p.dispatch(ctx, req)
}

// Close abandons the pending change, cancels in-flight calls and waits for
// them to return. Completions that arrive afterwards are dropped.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.stopLocked()
	p.mu.Unlock()

	p.cancel()
	p.inflight.Wait()
}
