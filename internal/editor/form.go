// ABOUTME: Form state of one open template: current values plus lifecycle flags
// ABOUTME: Touched fields decide which validation errors the host shows

package editor

import "github.com/mauromedda/contract-editor-go/internal/template"

// FormState is the editable state of a template. Dirty is set by any edit
// and cleared once a save or reload covers it.
type FormState struct {
	Values       template.Form
	Initializing bool
	Dirty        bool
	Touched      template.FieldSet
}

// Clone returns a deep copy.
func (f FormState) Clone() FormState {
	f.Values = f.Values.Clone()
	return f
}

func (f *FormState) touch(fields ...template.Field) {
	f.Touched = f.Touched.With(fields...)
	f.Dirty = true
}
