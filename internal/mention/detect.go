// ABOUTME: Caret-relative @mention query detection over the caret's text node
// ABOUTME: Pure function of (text, offset); recomputed on every selection change

package mention

import "unicode"

// Caret is the request-scoped caret context: the text of the node holding the
// caret, the caret's rune offset within it, and the document offset at which
// that node starts. It is never stored beyond the event that produced it.
type Caret struct {
	Text   string
	Offset int
	Base   int
}

// CaretSource is the capability a host editing surface provides so detection
// works without a real surface.
type CaretSource interface {
	CaretContext() (Caret, bool)
}

// CaretFunc adapts a function to CaretSource.
type CaretFunc func() (Caret, bool)

// CaretContext calls f.
func (f CaretFunc) CaretContext() (Caret, bool) { return f() }

// At is a CaretSource for a fixed caret.
func At(text string, offset int) CaretSource {
	return CaretFunc(func() (Caret, bool) {
		return Caret{Text: text, Offset: offset}, true
	})
}

// Query is an in-progress mention token. TriggerIndex is the rune index of
// the '@'; Text is everything between it and the caret.
type Query struct {
	TriggerIndex int
	Text         string
}

// Detect scans backward from the caret for the '@' that starts the token the
// caret is in. Whitespace before reaching '@' means there is no query.
// Offsets are rune offsets and are clamped into the text.
func Detect(text string, offset int) (Query, bool) {
	runes := []rune(text)
	offset = min(max(offset, 0), len(runes))
	for i := offset - 1; i >= 0; i-- {
		r := runes[i]
		if r == '@' {
			return Query{TriggerIndex: i, Text: string(runes[i+1 : offset])}, true
		}
		if unicode.IsSpace(r) {
			return Query{}, false
		}
	}
	return Query{}, false
}
