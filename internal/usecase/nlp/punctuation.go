package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var punctuation = map[string]bool{
	".": true, ",": true, "!": true, "?": true,
	";": true, ":": true, "-": true, "/": true,
}

// IsPunctuation reports whether a token is one of . , ! ? ; : - /
func IsPunctuation(tok string) bool {
	return punctuation[tok]
}

// CorrectPunctuation rejoins tokens, inserting a period before a token that
// opens a capitalized entity span unless punctuation is already there.
// Tokens are separated by one space except before punctuation. Token text
// and order are preserved.
func CorrectPunctuation(tokens []Token) string {
	var b strings.Builder
	for i, tok := range tokens {
		if strings.TrimSpace(tok.Text) == "" {
			continue
		}
		b.WriteString(tok.Text)
		if i == len(tokens)-1 {
			break
		}

		next := tokens[i+1]
		if IsPunctuation(next.Text) {
			continue
		}
		if next.BeginsEntity() && startsUpper(next.Text) && !IsPunctuation(tok.Text) {
			b.WriteByte('.')
		}
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String())
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
