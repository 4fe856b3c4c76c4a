// ABOUTME: Suggestion state machine driving the @mention list: Hidden <-> Visible
// ABOUTME: Refresh on selection change, clamp arrow navigation, commit on Enter/Tab/pointer

package mention

import (
	"slices"
	"unicode/utf8"

	"github.com/mauromedda/contract-editor-go/internal/directory"
)

// Key is a keyboard event relevant to the suggestion list.
type Key int

const (
	KeyUp Key = iota + 1
	KeyDown
	KeyEnter
	KeyTab
	KeyEscape
)

// CommitPolicy decides what a committed mention replaces.
type CommitPolicy int

const (
	// ReplaceQuery replaces the typed query after '@' with the name, so
	// "@ph" becomes "@Phani ".
	ReplaceQuery CommitPolicy = iota
	// KeepQuery inserts the name at the caret and leaves the typed query in
	// place ("@phPhani ").
	KeepQuery
)

// ParseCommitPolicy maps "replace" / "keep" to a policy; default is replace.
func ParseCommitPolicy(s string) CommitPolicy {
	if s == "keep" {
		return KeepQuery
	}
	return ReplaceQuery
}

// State is a snapshot of the suggestion list. When Visible, Candidates is
// non-empty and 0 <= ActiveIndex < len(Candidates).
type State struct {
	Visible     bool
	Candidates  []directory.Person
	ActiveIndex int
}

// Active returns the highlighted candidate.
func (s State) Active() (directory.Person, bool) {
	if !s.Visible || s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Candidates) {
		return directory.Person{}, false
	}
	return s.Candidates[s.ActiveIndex], true
}

// Commit describes the edit a chosen candidate produces: replace runes
// [Start, End) of the caret node (which begins at document offset Base)
// with Text.
type Commit struct {
	Person directory.Person
	Query  Query
	Base   int
	Start  int
	End    int
	Text   string
}

// Range returns the document offsets the commit replaces.
func (c Commit) Range() (int, int) { return c.Base + c.Start, c.Base + c.End }

// Option configures a Controller.
type Option func(*Controller)

// WithMatchMode selects prefix or fuzzy filtering.
func WithMatchMode(m MatchMode) Option { return func(c *Controller) { c.mode = m } }

// WithCommitPolicy selects whether commits replace the typed query.
func WithCommitPolicy(p CommitPolicy) Option { return func(c *Controller) { c.policy = p } }

// WithSeparator overrides the text appended after a committed name (default " ").
func WithSeparator(s string) Option { return func(c *Controller) { c.separator = s } }

// Controller owns one editor's suggestion state. Not safe for concurrent
// use; events must be fed in the order they occur.
type Controller struct {
	people    []directory.Person
	mode      MatchMode
	policy    CommitPolicy
	separator string

	state State
	caret Caret
	query Query
}

// NewController creates a hidden controller over people.
func NewController(people []directory.Person, opts ...Option) *Controller {
	c := &Controller{
		people:    append([]directory.Person(nil), people...),
		separator: " ",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetPeople swaps the directory and hides the list; the next Refresh
// filters against the new entries.
func (c *Controller) SetPeople(people []directory.Person) {
	c.people = append([]directory.Person(nil), people...)
	c.Hide()
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Candidates = slices.Clone(c.state.Candidates)
	return s
}

// Query returns the query that produced the visible list.
func (c *Controller) Query() (Query, bool) {
	return c.query, c.state.Visible
}

// Hide transitions to Hidden.
func (c *Controller) Hide() {
	c.state = State{}
	c.query = Query{}
}

// Refresh recomputes the list from the current caret. It must run on every
// selection change, not only on keystrokes, so moving the caret out of a
// token closes the list. ActiveIndex resets to 0 when the candidate set
// changes and is kept otherwise.
func (c *Controller) Refresh(src CaretSource) State {
	caret, ok := src.CaretContext()
	if !ok {
		c.Hide()
		return c.State()
	}
	caret.Offset = min(max(caret.Offset, 0), utf8.RuneCountInString(caret.Text))
	q, ok := Detect(caret.Text, caret.Offset)
	if !ok {
		c.Hide()
		return c.State()
	}
	cands := Filter(c.mode, q.Text, c.people)
	if len(cands) == 0 {
		c.Hide()
		return c.State()
	}

	idx := c.state.ActiveIndex
	if !c.state.Visible || !slices.Equal(cands, c.state.Candidates) {
		idx = 0
	}
	c.state = State{Visible: true, Candidates: cands, ActiveIndex: idx}
	c.caret = caret
	c.query = q
	return c.State()
}

// Key handles a navigation key. consumed reports whether the host should
// stop default handling; commit is non-nil when Enter/Tab chose a candidate.
func (c *Controller) Key(k Key) (consumed bool, commit *Commit) {
	if !c.state.Visible {
		return false, nil
	}
	switch k {
	case KeyDown:
		c.state.ActiveIndex = min(c.state.ActiveIndex+1, len(c.state.Candidates)-1)
		return true, nil
	case KeyUp:
		c.state.ActiveIndex = max(c.state.ActiveIndex-1, 0)
		return true, nil
	case KeyEnter, KeyTab:
		cm, ok := c.Select(c.state.ActiveIndex)
		if !ok {
			return false, nil
		}
		return true, &cm
	case KeyEscape:
		c.Hide()
		return true, nil
	}
	return false, nil
}

// Select commits candidate i (pointer selection) and hides the list.
func (c *Controller) Select(i int) (Commit, bool) {
	if !c.state.Visible || i < 0 || i >= len(c.state.Candidates) {
		return Commit{}, false
	}
	p := c.state.Candidates[i]
	start := c.caret.Offset
	if c.policy == ReplaceQuery {
		start = c.query.TriggerIndex + 1
	}
	cm := Commit{
		Person: p,
		Query:  c.query,
		Base:   c.caret.Base,
		Start:  start,
		End:    c.caret.Offset,
		Text:   p.Name + c.separator,
	}
	c.Hide()
	return cm, true
}
