// ABOUTME: Validation gate deciding whether a form may be persisted
// ABOUTME: Generic required/date rules plus the visible-text content rule; overall = both

package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/mauromedda/contract-editor-go/internal/markup"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

// Error codes are stable and safe to match on.
const (
	CodeRequired    = "required"
	CodePastDate    = "past_date"
	CodeInvalidDate = "invalid_date"
	CodeMarkupEmpty = "markup_empty"
)

// FieldError is one failed rule.
type FieldError struct {
	Field template.Field
	Code  string
}

func (e FieldError) Error() string {
	return e.Field.String() + ": " + e.Code
}

// Result collects the failures of one check. A Result with no errors is
// valid. A non-valid *Result is returned as an error by Gate callers.
type Result struct {
	Errors []FieldError
}

// Valid reports whether no rule failed.
func (r *Result) Valid() bool { return r == nil || len(r.Errors) == 0 }

// Error lists the failures.
func (r *Result) Error() string {
	if r.Valid() {
		return "valid"
	}
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Has reports whether field failed with code. An empty code matches any.
func (r *Result) Has(f template.Field, code string) bool {
	if r == nil {
		return false
	}
	for _, e := range r.Errors {
		if e.Field == f && (code == "" || e.Code == code) {
			return true
		}
	}
	return false
}

// Fields returns the set of fields with at least one failure.
func (r *Result) Fields() template.FieldSet {
	var s template.FieldSet
	if r == nil {
		return s
	}
	for _, e := range r.Errors {
		s = s.With(e.Field)
	}
	return s
}

func (r *Result) add(f template.Field, code string) {
	r.Errors = append(r.Errors, FieldError{Field: f, Code: code})
}

// Err returns r as an error when invalid and nil otherwise.
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r
}

// Checker is the capability the autosave pipeline needs.
type Checker interface {
	Check(f template.Form) *Result
}

// Gate evaluates the validation rules.
type Gate struct {
	requireTags bool
	now         func() time.Time
	loc         *time.Location
}

// Option configures a Gate.
type Option func(*Gate)

// WithRequireTags toggles the non-empty tags rule (default on).
func WithRequireTags(on bool) Option { return func(g *Gate) { g.requireTags = on } }

// WithNow injects the clock used by the date rule.
func WithNow(now func() time.Time) Option { return func(g *Gate) { g.now = now } }

// WithLocation sets the zone in which "today" is computed (default Local).
func WithLocation(loc *time.Location) Option { return func(g *Gate) { g.loc = loc } }

// New creates a gate with default rules.
func New(opts ...Option) *Gate {
	g := &Gate{requireTags: true, now: time.Now, loc: time.Local}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Fields applies the generic rules: required fields and the date rule.
func (g *Gate) Fields(f template.Form) *Result {
	r := &Result{}
	req := func(field template.Field, v string) {
		if strings.TrimSpace(v) == "" {
			r.add(field, CodeRequired)
		}
	}
	req(template.FieldName, f.Name)
	req(template.FieldContent, f.Content)
	req(template.FieldClientName, f.ClientName)
	req(template.FieldContractType, f.ContractType)

	if strings.TrimSpace(f.ContractDate) == "" {
		r.add(template.FieldContractDate, CodeRequired)
	} else if day, ok := g.parseDay(f.ContractDate); !ok {
		r.add(template.FieldContractDate, CodeInvalidDate)
	} else if day.Before(g.today()) {
		r.add(template.FieldContractDate, CodePastDate)
	}

	if f.Attachments == nil || strings.TrimSpace(f.Attachments.URL) == "" {
		r.add(template.FieldAttachments, CodeRequired)
	}
	if g.requireTags && len(template.NormalizeTags(f.Tags)) == 0 {
		r.add(template.FieldTags, CodeRequired)
	}
	return r
}

// Content applies the visible-text rule to markup content.
func (g *Gate) Content(content string) *Result {
	r := &Result{}
	if markup.IsMarkupEmpty(content) {
		r.add(template.FieldContent, CodeMarkupEmpty)
	}
	return r
}

// Check is the conjunction of Fields and Content.
func (g *Gate) Check(f template.Form) *Result {
	r := g.Fields(f)
	if !r.Has(template.FieldContent, CodeRequired) {
		r.Errors = append(r.Errors, g.Content(f.Content).Errors...)
	}
	return r
}

func (g *Gate) today() time.Time {
	n := g.now().In(g.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, g.loc)
}

func (g *Gate) parseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(template.DateLayout, s, g.loc)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, false
		}
		t = t.In(g.loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, g.loc), true
}
