// Package aggregate holds the pure computations behind every derived
// counter: chapter word counts, novel rating aggregates and dashboard
// performance figures. Callers are responsible for reading the source rows
// inside the same transaction that persists the result.
package aggregate

import (
	"regexp"
	"strings"
)

var (
	markupTag  = regexp.MustCompile(`<[^>]+>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CountWords returns the number of whitespace-delimited tokens in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ParagraphWordCount sums CountWords over a chapter's paragraph texts.
func ParagraphWordCount(texts []string) int {
	total := 0
	for _, t := range texts {
		total += CountWords(t)
	}
	return total
}

// HTMLWordCount counts words in rich text: every tag becomes a space,
// whitespace runs collapse, and the trimmed result is split on spaces.
func HTMLWordCount(html string) int {
	if html == "" {
		return 0
	}
	text := markupTag.ReplaceAllString(html, " ")
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return 0
	}
	return len(strings.Split(text, " "))
}
