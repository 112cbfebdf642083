package textutil

import (
	"regexp"
	"strings"
)

// DefaultSentencesPerPage is the page size used by the story pipeline.
const DefaultSentencesPerPage = 3

var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// SplitIntoPages splits free text into pages of sentencesPerPage sentences
// each. Sentences end at `.`, `!` or `?` followed by whitespace; the remainder
// after the last full page becomes a shorter final page. Blank input yields
// nil. The operation is deterministic and idempotent on already-segmented
// input joined with the same separator.
func SplitIntoPages(text string, sentencesPerPage int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if sentencesPerPage <= 0 {
		sentencesPerPage = DefaultSentencesPerPage
	}

	sentences := splitSentences(text)

	var pages []string
	var buffer []string
	for _, s := range sentences {
		if s == "" {
			continue
		}
		buffer = append(buffer, s)
		if len(buffer) == sentencesPerPage {
			pages = append(pages, strings.Join(buffer, " "))
			buffer = nil
		}
	}
	if len(buffer) > 0 {
		pages = append(pages, strings.Join(buffer, " "))
	}
	return pages
}

// splitSentences cuts text after sentence-final punctuation followed by
// whitespace, keeping the punctuation with the preceding sentence.
func splitSentences(text string) []string {
	var sentences []string
	rest := text
	for {
		loc := sentenceBoundary.FindStringIndex(rest)
		if loc == nil {
			break
		}
		// loc[0] is the punctuation mark; keep it.
		sentences = append(sentences, strings.TrimSpace(rest[:loc[0]+1]))
		rest = rest[loc[1]:]
	}
	if s := strings.TrimSpace(rest); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
