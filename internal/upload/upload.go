// ABOUTME: Attachment uploader capability and a simulated implementation
// ABOUTME: The simulated uploader drains the reader, waits, and returns a deterministic URL

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/mauromedda/contract-editor-go/internal/template"
)

// ErrCanceled is returned when the context ends before the upload finishes.
var ErrCanceled = errors.New("upload canceled")

// Uploader stores a file and returns its reference.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (template.Attachment, error)
}

// Defaults for Simulated.
const (
	DefaultDelay   = time.Second
	DefaultBaseURL = "https://example.com/uploads/"
)

// Simulated stands in for a real upload endpoint.
type Simulated struct {
	Delay   time.Duration
	BaseURL string
}

// NewSimulated returns an uploader with the default delay and base URL.
func NewSimulated() *Simulated {
	return &Simulated{Delay: DefaultDelay, BaseURL: DefaultBaseURL}
}

// Upload reads r to completion, waits Delay, and returns an attachment
// whose URL is BaseURL followed by the escaped base name.
func (s *Simulated) Upload(ctx context.Context, name string, r io.Reader) (template.Attachment, error) {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "" || name == "." || name == "/" {
		return template.Attachment{}, fmt.Errorf("upload: file name is required")
	}
	if r != nil {
		if _, err := io.Copy(io.Discard, &ctxReader{ctx: ctx, r: r}); err != nil {
			if ctx.Err() != nil {
				return template.Attachment{}, ErrCanceled
			}
			return template.Attachment{}, fmt.Errorf("upload %s: %w", name, err)
		}
	}

	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return template.Attachment{}, ErrCanceled
	case <-t.C:
	}

	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return template.Attachment{Name: name, URL: base + url.PathEscape(name)}, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
