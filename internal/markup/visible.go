// ABOUTME: Visible-text extraction and sanitizing of external markup via bluemonday
// ABOUTME: Strict policy strips every tag; content policy keeps only editor-produced formatting

package markup

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	strictOnce   sync.Once
	strictPolicy *bluemonday.Policy

	contentOnce   sync.Once
	contentPolicy *bluemonday.Policy
)

// VisibleText strips all markup, decodes entities and trims whitespace.
func VisibleText(content string) string {
	strictOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(content)))
}

// IsMarkupEmpty reports whether content has no visible text, even if the raw
// markup is non-empty (e.g. "<p><br></p>").
func IsMarkupEmpty(content string) bool {
	return VisibleText(content) == ""
}

// Sanitize removes everything the editor could not have produced itself:
// scripts, event handlers, links and any style other than text color.
func Sanitize(content string) string {
	contentOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "div", "br", "b", "strong", "i", "em", "u", "ins", "span", "font")
		p.AllowStyles("color").OnElements("span", "p", "div", "b", "strong", "i", "em", "u")
		p.AllowAttrs("color").OnElements("font")
		contentPolicy = p
	})
	return contentPolicy.Sanitize(content)
}
