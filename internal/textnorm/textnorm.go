// Package textnorm folds free-form multilingual text into the comparable form
// used by the skill catalog: lower-case, without diacritics, single-spaced.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var quotes = strings.NewReplacer(
	"’", "'",
	"‘", "'",
	"´", "'",
	"“", `"`,
	"”", `"`,
)

// Fold lower-cases s, strips accents and collapses whitespace runs into a
// single space. The result never has leading or trailing spaces.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	// transform.Chain keeps state between calls, so a fresh one is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = quotes.Replace(strings.ToLower(folded))

	return strings.Join(strings.Fields(folded), " ")
}

// IsWordRune reports whether r counts as part of a word for boundary checks.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokens folds s and splits it into word tokens.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !IsWordRune(r)
	})
}
