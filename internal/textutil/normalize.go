package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// EndsWithTerminal reports whether s ends with sentence-final punctuation.
func EndsWithTerminal(s string) bool {
	s = strings.TrimRight(s, " \t\n\r")
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// NormalizeSentence is the shared normalization rule for every text writer in
// the story pipeline: collapse internal whitespace runs to single spaces, trim,
// and append a period if the text does not already end in `.`, `!` or `?`.
// Idempotent: normalizing twice equals normalizing once.
func NormalizeSentence(s string) string {
	s = strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	if !EndsWithTerminal(s) {
		s += "."
	}
	return s
}

// AppendSentence appends fragment to draft, forcing a sentence boundary when
// the existing draft does not end in terminal punctuation. Both sides are
// expected to be normalized already; empty operands pass through.
func AppendSentence(draft, fragment string) string {
	draft = strings.TrimSpace(draft)
	fragment = strings.TrimSpace(fragment)
	if draft == "" {
		return fragment
	}
	if fragment == "" {
		return draft
	}
	if !EndsWithTerminal(draft) {
		draft += "."
	}
	return draft + " " + fragment
}
