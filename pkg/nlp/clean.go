// Package nlp holds the text enrichment steps that run between ingestion
// and graph loading: normalization, embedding, entity extraction and
// stance classification.
package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// Clean normalizes raw discussion text for retrieval indexing: URLs are
// stripped, the text is lowercased, stopwords are dropped and the
// remaining tokens are stemmed. The original text is kept separately for
// display and classification; only the cleaned form feeds the fulltext
// index.
func Clean(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	tokens := tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, english.Stem(tok, false))
	}
	return strings.Join(out, " ")
}

// tokenize splits on anything that is not a letter, digit or in-word
// apostrophe, discarding punctuation in the process.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
