// Package naming maps numeric indices and sprite file names to the CSS class
// tokens and URLs used by the generated artifacts.
package naming

import (
	"strconv"
	"strings"
)

// Placeholder is the token in a URL template that is replaced by the sprite's
// output file name.
const Placeholder = "[name]"

// ClassName concatenates prefix and the decimal index. The same scheme serves
// sprite classes (group index), icon classes (position within the group) and
// size classes (pixel size).
func ClassName(prefix string, index int) string {
	return prefix + strconv.Itoa(index)
}

// ResolveURL substitutes the placeholder in template with fileName. Callers
// validate that template carries exactly one placeholder.
func ResolveURL(template, fileName string) string {
	return strings.Replace(template, Placeholder, fileName, 1)
}

// CountPlaceholders reports how many placeholders template contains.
func CountPlaceholders(template string) int {
	return strings.Count(template, Placeholder)
}

// ClassList joins class tokens with single spaces, skipping empty ones.
func ClassList(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
