// ABOUTME: Preview renderer: interpolated markup to Markdown to glamour terminal output
// ABOUTME: Caches rendered results keyed by content hash + width

package interactive

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mauromedda/contract-editor-go/internal/markup"
)

// PreviewRenderer turns rendered template markup into styled terminal text.
type PreviewRenderer struct {
	cache map[string]string
	style string
}

// NewPreviewRenderer creates a renderer using glamour's automatic style.
func NewPreviewRenderer() *PreviewRenderer {
	return &PreviewRenderer{cache: make(map[string]string)}
}

// WithStyle pins a glamour standard style ("dark", "light", "notty").
func (r *PreviewRenderer) WithStyle(name string) *PreviewRenderer {
	r.style = name
	clear(r.cache)
	return r
}

// Render converts content markup to Markdown and styles it for a terminal
// of the given width. On glamour errors the plain Markdown is returned.
func (r *PreviewRenderer) Render(content string, width int) string {
	md := markup.MustParse(markup.Sanitize(content)).Markdown()
	if strings.TrimSpace(md) == "" {
		return ""
	}

	key := cacheKey(md, width)
	if cached, ok := r.cache[key]; ok {
		return cached
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(max(width, 20))}
	if r.style != "" {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	renderer, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	rendered = strings.TrimRight(rendered, "\n ")

	r.cache[key] = rendered
	return rendered
}

func cacheKey(content string, width int) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x:%d", h[:8], width)
}
