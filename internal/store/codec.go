// ABOUTME: Column codecs for the SQL store: tag sets and attachments as compact JSON
// ABOUTME: Hand-driven easyjson writer/lexer so the hot save path avoids reflection

package store

import (
	"encoding/json"
	"fmt"

	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
	"github.com/mauromedda/contract-editor-go/internal/template"
)

func encodeTags(tags []string) (string, error) {
	w := jwriter.Writer{}
	w.RawByte('[')
	for i, t := range tags {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(t)
	}
	w.RawByte(']')
	b, err := w.BuildBytes()
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(data string) ([]string, error) {
	in := jlexer.Lexer{Data: []byte(data)}
	out := []string{}
	if in.IsNull() {
		in.Skip()
	} else {
		in.Delim('[')
		for !in.IsDelim(']') {
			out = append(out, in.String())
			in.WantComma()
		}
		in.Delim(']')
	}
	in.Consumed()
	if err := in.Error(); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	return out, nil
}

func encodeAttachment(a *template.Attachment) (string, error) {
	if a == nil {
		return "null", nil
	}
	w := jwriter.Writer{}
	w.RawString(`{"name":`)
	w.String(a.Name)
	w.RawString(`,"url":`)
	w.String(a.URL)
	w.RawByte('}')
	b, err := w.BuildBytes()
	if err != nil {
		return "", fmt.Errorf("encoding attachment: %w", err)
	}
	return string(b), nil
}

func decodeAttachment(data string) (*template.Attachment, error) {
	in := jlexer.Lexer{Data: []byte(data)}
	if in.IsNull() {
		in.Skip()
		in.Consumed()
		if err := in.Error(); err != nil {
			return nil, fmt.Errorf("decoding attachment: %w", err)
		}
		return nil, nil
	}
	var a template.Attachment
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeString()
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "name":
			a.Name = in.String()
		case "url":
			a.URL = in.String()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	in.Consumed()
	if err := in.Error(); err != nil {
		return nil, fmt.Errorf("decoding attachment: %w", err)
	}
	return &a, nil
}

// Free-form fields carry arbitrary values, so they go through encoding/json.
func encodeFields(m map[string]any) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding fields: %w", err)
	}
	return string(b), nil
}

func decodeFields(data string) (map[string]any, error) {
	m := map[string]any{}
	if data == "" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("decoding fields: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
