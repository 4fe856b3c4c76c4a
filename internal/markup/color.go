// ABOUTME: Text color parsing for the color command and incoming markup
// ABOUTME: Accepts #rgb, #rrggbb and rgb(r, g, b); normalizes to lowercase #rrggbb

package markup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned for colors that are not hex or rgb() values.
var ErrInvalidColor = errors.New("invalid color")

// ParseColor normalizes a color value to "#rrggbb".
func ParseColor(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(s, "#"):
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		return "#" + hex, nil
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		parts := strings.Split(s[len("rgb("):len(s)-1], ",")
		if len(parts) != 3 {
			return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		var out strings.Builder
		out.WriteByte('#')
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
			}
			fmt.Fprintf(&out, "%02x", n)
		}
		return out.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
}
