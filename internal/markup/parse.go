// ABOUTME: Markup fragment parsing into a Document using golang.org/x/net/html
// ABOUTME: Block elements and <br> open paragraphs; b/i/u/span/font contribute inline styles

package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse builds a Document from a markup fragment. Plain text without any
// tags is accepted and becomes one paragraph per line.
func Parse(fragment string) (*Document, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	b := &builder{}
	for _, n := range nodes {
		b.walk(n, Style{})
	}
	b.close()
	if len(b.blocks) == 0 {
		b.blocks = []block{{}}
	}
	return &Document{blocks: b.blocks}, nil
}

// MustParse is Parse for known-good fragments; invalid input yields an empty document.
func MustParse(fragment string) *Document {
	d, err := Parse(fragment)
	if err != nil {
		return New()
	}
	return d
}

type builder struct {
	blocks []block
	cur    *block
}

func (b *builder) open() {
	if b.cur == nil {
		b.cur = &block{}
	}
}

func (b *builder) close() {
	if b.cur != nil {
		b.blocks = append(b.blocks, *b.cur)
		b.cur = nil
	}
}

func (b *builder) text(s string, st Style) {
	// Inter-block whitespace from pretty-printed markup is not content.
	if b.cur == nil && strings.TrimSpace(s) == "" {
		return
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.open()
			b.close()
		}
		if line == "" {
			continue
		}
		b.open()
		rs := []rune(line)
		b.cur.text = append(b.cur.text, rs...)
		b.cur.styles = append(b.cur.styles, repeatStyle(st, len(rs))...)
	}
}

func (b *builder) children(n *html.Node, st Style) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.walk(c, st)
	}
}

func (b *builder) walk(n *html.Node, st Style) {
	switch n.Type {
	case html.TextNode:
		b.text(n.Data, st)
		return
	case html.ElementNode:
	default:
		b.children(n, st)
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Template:
		return
	case atom.Br:
		b.open()
		b.close()
		return
	case atom.B, atom.Strong:
		st.Marks |= Bold
	case atom.I, atom.Em:
		st.Marks |= Italic
	case atom.U, atom.Ins:
		st.Marks |= Underline
	}
	if c := colorOf(n); c != "" {
		st.Color = c
	}

	if !isBlock(n.DataAtom) {
		b.children(n, st)
		return
	}
	b.close()
	start := len(b.blocks)
	b.children(n, st)
	b.close()
	if len(b.blocks) == start {
		b.blocks = append(b.blocks, block{})
	}
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Li, atom.Blockquote, atom.Pre, atom.Section, atom.Article:
		return true
	}
	return false
}

// colorOf extracts a text color from a style="color: ..." declaration or a
// legacy <font color="..."> attribute.
func colorOf(n *html.Node) string {
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "style":
			for _, decl := range strings.Split(a.Val, ";") {
				prop, val, ok := strings.Cut(decl, ":")
				if !ok || !strings.EqualFold(strings.TrimSpace(prop), "color") {
					continue
				}
				if c, err := ParseColor(val); err == nil {
					return c
				}
			}
		case "color":
			if n.DataAtom == atom.Font {
				if c, err := ParseColor(a.Val); err == nil {
					return c
				}
			}
		}
	}
	return ""
}
