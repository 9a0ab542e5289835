package embedding

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// stopwords contains common English words that carry no policy meaning.
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "do": true, "does": true, "did": true,
	"have": true, "has": true, "had": true, "be": true, "been": true,
	"being": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "can": true, "shall": true, "not": true,
	"no": true, "and": true, "or": true, "but": true, "if": true,
	"then": true, "than": true, "so": true, "as": true, "at": true,
	"by": true, "for": true, "from": true, "in": true, "into": true,
	"of": true, "on": true, "to": true, "with": true, "about": true,
	"up": true, "out": true, "it": true, "its": true, "this": true,
	"that": true, "what": true, "which": true, "who": true, "how": true,
	"when": true, "where": true, "why": true, "you": true, "me": true,
	"i": true, "my": true, "your": true, "we": true, "they": true,
	"he": true, "she": true, "her": true, "him": true, "us": true,
	"them": true, "want": true, "please": true,
}

// placeholderToken matches redaction placeholders such as <PERSON>. They
// stand for removed content and carry no policy meaning.
var placeholderToken = regexp.MustCompile(`<[A-Z][A-Z_]*>`)

// Tokenize splits text into case-folded, stemmed, non-stopword tokens in
// order of appearance. Duplicates are kept so term frequency survives.
// Redaction placeholders are dropped.
func Tokenize(text string) []string {
	text = placeholderToken.ReplaceAllString(text, " ")

	// A Caser is stateful, so each call gets its own.
	folded := cases.Fold().String(text)

	words := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < 2 || stopwords[w] {
			continue
		}
		tokens = append(tokens, stem(w))
	}
	return tokens
}

// stem folds simple English plurals onto their singular form.
func stem(w string) string {
	switch {
	case len(w) > 4 && strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case len(w) > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		return w[:len(w)-1]
	default:
		return w
	}
}
