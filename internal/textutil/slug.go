package textutil

import (
	"strings"
	"unicode"
)

// Slugify derives a stable registry key from a moral theme display name.
// Letters (Hangul included) and digits are kept lowercased, whitespace runs
// become single hyphens, everything else is dropped. "서로 돕기" -> "서로-돕기".
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.TrimSpace(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			lastHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
