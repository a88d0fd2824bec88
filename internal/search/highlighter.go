package search

import (
	"strings"
	"unicode"

	"github.com/hyperjump/ti4lookup/internal/keyword"
	"github.com/hyperjump/ti4lookup/pkg/utils"
)

// Snippet truncates content to maxLen runes.
func Snippet(content string, maxLen int) string {
	return utils.Truncate(content, maxLen)
}

// Highlight wraps every word of text that contains a positive query term in open and
// close. Matching folds case and diacritics; negated terms are never highlighted.
func Highlight(text, query, open, close string) string {
	var terms []string
	for _, t := range keyword.ParseQuery(query).Terms() {
		if t.Op.Negated() || t.Text == "" {
			continue
		}
		terms = append(terms, utils.Words(t.Text)...)
	}
	if len(terms) == 0 {
		return text
	}

	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if !isWordRune(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		word := string(runes[i:j])
		if containsAny(utils.Fold(word), terms) {
			b.WriteString(open)
			b.WriteString(word)
			b.WriteString(close)
		} else {
			b.WriteString(word)
		}
		i = j
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func containsAny(word string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(word, t) {
			return true
		}
	}
	return false
}
