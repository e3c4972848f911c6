package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims surrounding whitespace, drops control characters
// other than newline and tab, and keeps at most maxRunes characters. Product
// and content copy is often Arabic, so truncation never splits a character.
// maxRunes <= 0 disables truncation.
func SanitizeString(input string, maxRunes int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxRunes > 0 {
		count := 0
		for i := range cleaned {
			if count == maxRunes {
				cleaned = cleaned[:i]
				break
			}
			count++
		}
	}
	return strings.TrimSpace(cleaned)
}
