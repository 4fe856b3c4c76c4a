// ABOUTME: Embedded changelog shown by `ctedit changelog`
// ABOUTME: Uses go:embed to include CHANGELOG.md; Section extracts one release

package changelog

import (
	_ "embed"
	"strings"
)

//go:embed CHANGELOG.md
var content string

// Get returns the embedded changelog content.
func Get() string {
	if content == "" {
		return "No changelog available."
	}
	return content
}

// Section returns the "## [version]" block including its heading, or ""
// when no release matches. Matching ignores case and a leading "v".
func Section(version string) string {
	return section(Get(), version)
}

func section(doc, version string) string {
	want := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(version), "v"))
	if want == "" {
		return ""
	}

	var (
		b  strings.Builder
		in bool
	)
	for line := range strings.Lines(doc) {
		if strings.HasPrefix(line, "## ") {
			if in {
				break
			}
			head := strings.TrimSpace(strings.TrimPrefix(line, "## "))
			head = strings.Trim(strings.Fields(head + " x")[0], "[]")
			in = strings.ToLower(head) == want
		}
		if in {
			b.WriteString(line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
