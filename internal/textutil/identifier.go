package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackIdentifier names values whose source has no letters or digits, and
// prefixes identifiers that would otherwise start with a digit.
const fallbackIdentifier = "Icon"

// Casers and transformers are stateful, so each call builds its own.
func newTitleCaser() cases.Caser {
	return cases.Title(language.Und, cases.NoLower)
}

// foldMarks strips combining marks so "ïcône" folds to "icone" before
// splitting.
func foldMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Identifier converts name into a PascalCase identifier made of ASCII-safe
// letters and digits.
func Identifier(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return fallbackIdentifier
	}
	caser := newTitleCaser()
	var b strings.Builder
	for _, word := range words {
		b.WriteString(caser.String(word))
	}
	out := b.String()
	if r, _ := utf8.DecodeRuneInString(out); unicode.IsDigit(r) {
		out = fallbackIdentifier + out
	}
	return out
}

// LowerIdentifier returns Identifier(name) with its first rune lowercased.
func LowerIdentifier(name string) string {
	id := Identifier(name)
	r, size := utf8.DecodeRuneInString(id)
	return string(unicode.ToLower(r)) + id[size:]
}

func splitWords(name string) []string {
	folded, _, err := transform.String(foldMarks(), strings.TrimSpace(name))
	if err != nil {
		folded = name
	}
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !(r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
}
