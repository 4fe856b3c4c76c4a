// ABOUTME: Contract template document, the editable form projection, and explicit partial updates
// ABOUTME: Update carries a changed-field set so false and empty values apply unambiguously

package template

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
)

// ErrNotFound is returned by stores when no template has the requested id.
var ErrNotFound = errors.New("template not found")

// DateLayout is the wire format of ContractDate.
const DateLayout = "2006-01-02"

// Attachment is an uploaded file reference.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Document is a persisted contract template.
type Document struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Content      string         `json:"content"`
	ClientName   string         `json:"clientName"`
	ContractDate string         `json:"contractDate"`
	ContractType string         `json:"contractType"`
	Attachments  *Attachment    `json:"attachments,omitempty"`
	Tags         []string       `json:"tags"`
	IsActive     bool           `json:"isActive"`
	Fields       map[string]any `json:"fields,omitempty"`
}

// Clone returns a deep copy.
func (d Document) Clone() Document {
	if d.Attachments != nil {
		a := *d.Attachments
		d.Attachments = &a
	}
	d.Tags = slices.Clone(d.Tags)
	d.Fields = maps.Clone(d.Fields)
	return d
}

// Field identifies one editable form field.
type Field uint16

const (
	FieldName Field = 1 << iota
	FieldContent
	FieldClientName
	FieldContractDate
	FieldContractType
	FieldAttachments
	FieldTags
	FieldIsActive
)

// AllFields lists every editable field in form order.
var AllFields = []Field{
	FieldName, FieldContent, FieldClientName, FieldContractDate,
	FieldContractType, FieldAttachments, FieldTags, FieldIsActive,
}

// String returns the wire name of the field.
func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldContent:
		return "content"
	case FieldClientName:
		return "clientName"
	case FieldContractDate:
		return "contractDate"
	case FieldContractType:
		return "contractType"
	case FieldAttachments:
		return "attachments"
	case FieldTags:
		return "tags"
	case FieldIsActive:
		return "isActive"
	}
	return "unknown"
}

// FieldSet is a set of fields.
type FieldSet uint16

// All is the set of every editable field.
const All FieldSet = 1<<8 - 1

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool { return s&FieldSet(f) != 0 }

// With returns the set plus fs.
func (s FieldSet) With(fs ...Field) FieldSet {
	for _, f := range fs {
		s |= FieldSet(f)
	}
	return s
}

// Fields returns the members in form order.
func (s FieldSet) Fields() []Field {
	var out []Field
	for _, f := range AllFields {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// String joins the member names with commas.
func (s FieldSet) String() string {
	names := make([]string, 0, len(AllFields))
	for _, f := range s.Fields() {
		names = append(names, f.String())
	}
	return strings.Join(names, ",")
}

// Form is the editable projection of a Document.
type Form struct {
	Name         string
	Content      string
	ClientName   string
	ContractDate string
	ContractType string
	Attachments  *Attachment
	Tags         []string
	IsActive     bool
}

// FormFromDocument projects d onto the editable fields.
func FormFromDocument(d Document) Form {
	d = d.Clone()
	return Form{
		Name:         d.Name,
		Content:      d.Content,
		ClientName:   d.ClientName,
		ContractDate: d.ContractDate,
		ContractType: d.ContractType,
		Attachments:  d.Attachments,
		Tags:         d.Tags,
		IsActive:     d.IsActive,
	}
}

// Clone returns a deep copy.
func (f Form) Clone() Form {
	if f.Attachments != nil {
		a := *f.Attachments
		f.Attachments = &a
	}
	f.Tags = slices.Clone(f.Tags)
	return f
}

// Update is a partial write: only the fields in Changed are applied.
type Update struct {
	Form
	Changed FieldSet
}

// FullUpdate carries every field of f.
func FullUpdate(f Form) Update {
	return Update{Form: f.Clone(), Changed: All}
}

// Apply merges the changed fields of u into d and returns the result.
func (u Update) Apply(d Document) Document {
	d = d.Clone()
	f := u.Form.Clone()
	if u.Changed.Has(FieldName) {
		d.Name = f.Name
	}
	if u.Changed.Has(FieldContent) {
		d.Content = f.Content
	}
	if u.Changed.Has(FieldClientName) {
		d.ClientName = f.ClientName
	}
	if u.Changed.Has(FieldContractDate) {
		d.ContractDate = f.ContractDate
	}
	if u.Changed.Has(FieldContractType) {
		d.ContractType = f.ContractType
	}
	if u.Changed.Has(FieldAttachments) {
		d.Attachments = f.Attachments
	}
	if u.Changed.Has(FieldTags) {
		d.Tags = NormalizeTags(f.Tags)
	}
	if u.Changed.Has(FieldIsActive) {
		d.IsActive = f.IsActive
	}
	return d
}

// NormalizeTags trims, drops empties, and deduplicates preserving first
// occurrence order. The result is never nil.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// ToggleTag adds tag if absent and removes it if present.
func ToggleTag(tags []string, tag string) []string {
	if i := slices.Index(tags, tag); i >= 0 {
		return slices.Delete(slices.Clone(tags), i, i+1)
	}
	return append(slices.Clone(tags), tag)
}

// DefaultTags is the tag vocabulary offered when none is configured.
var DefaultTags = []string{"Urgent", "Important", "Optional"}

// Persister writes partial updates. It is the only capability the autosave
// pipeline needs.
type Persister interface {
	Persist(ctx context.Context, id int64, u Update) error
}

// Store is a template repository.
type Store interface {
	Persister
	Fetch(ctx context.Context, id int64) (Document, error)
	List(ctx context.Context) ([]Document, error)
	Create(ctx context.Context, name string) (Document, error)
	Delete(ctx context.Context, id int64) error
	Close() error
}

// Rename sets only the name of template id.
func Rename(ctx context.Context, s Persister, id int64, name string) error {
	return s.Persist(ctx, id, Update{Form: Form{Name: name}, Changed: FieldSet(FieldName)})
}
