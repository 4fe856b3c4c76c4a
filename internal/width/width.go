// ABOUTME: Display width of terminal strings with grapheme-aware segmentation
// ABOUTME: ANSI escape sequences count as zero columns; pure ASCII takes a fast path

package width

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Visible returns the number of terminal cells s occupies.
func Visible(s string) int {
	if isPlainASCII(s) {
		return len(s)
	}
	s = StripANSI(s)
	w, state := 0, -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		w += Cluster(cluster)
	}
	return w
}

// Cluster returns the width of one grapheme cluster.
func Cluster(cluster string) int {
	if cluster == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	return runewidth.RuneWidth(r)
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

// StripANSI removes CSI and OSC escape sequences.
func StripANSI(s string) string {
	if !strings.ContainsRune(s, '\x1b') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\x1b' {
			i = skipEscape(s, i)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// skipEscape returns the index just past the escape sequence at s[i].
func skipEscape(s string, i int) int {
	i++
	if i >= len(s) {
		return i
	}
	switch s[i] {
	case '[':
		for i++; i < len(s); i++ {
			if s[i] >= 0x40 && s[i] <= 0x7e {
				return i + 1
			}
		}
		return i
	case ']':
		for i++; i < len(s); i++ {
			if s[i] == '\a' {
				return i + 1
			}
			if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '\\' {
				return i + 2
			}
		}
		return i
	}
	return i + 1
}

// Truncate cuts s to at most max cells, ending in an ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if Visible(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	var b strings.Builder
	col, target := 0, max-1
	for i := 0; i < len(s) && col < target; {
		if s[i] == '\x1b' {
			end := skipEscape(s, i)
			b.WriteString(s[i:end])
			i = end
			continue
		}
		cluster, rest, _, _ := uniseg.FirstGraphemeClusterInString(s[i:], -1)
		cw := Cluster(cluster)
		if col+cw > target {
			break
		}
		b.WriteString(cluster)
		col += cw
		i += len(s[i:]) - len(rest)
	}
	if strings.ContainsRune(s, '\x1b') {
		b.WriteString("\x1b[0m")
	}
	b.WriteRune('…')
	return b.String()
}

// Pad right-pads s with spaces to n cells.
func Pad(s string, n int) string {
	if w := Visible(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// PrevBoundary returns the rune column of the last grapheme cluster boundary
// in s before col. It returns 0 when col is at or before the first cluster.
func PrevBoundary(s string, col int) int {
	prev := 0
	for _, b := range boundaries(s) {
		if b >= col {
			break
		}
		prev = b
	}
	return prev
}

// NextBoundary returns the rune column of the first grapheme cluster
// boundary in s after col, clamped to the rune length of s.
func NextBoundary(s string, col int) int {
	bs := boundaries(s)
	for _, b := range bs {
		if b > col {
			return b
		}
	}
	return bs[len(bs)-1]
}

// boundaries lists the rune offsets where the clusters of s start, followed
// by the rune length of s.
func boundaries(s string) []int {
	out := []int{0}
	n, state := 0, -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		n += utf8.RuneCountInString(cluster)
		out = append(out, n)
	}
	return out
}
