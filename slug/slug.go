// Package slug turns titles and tag names into URL-safe ASCII tokens.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const DefaultDelim = "-"

// separators is the punctuation class that splits words. Control characters and
// runes outside ASCII split words too.
const separators = "\t !\"#$%&'()*-/<=>?@[\\]^_`{|},."

func Slugify(text string) string {
	return SlugifyWith(text, DefaultDelim)
}

// SlugifyWith lowercases text, folds accented letters to ASCII and joins the
// remaining words with delim. The result is stable under a second pass as long as
// delim is itself made of separator characters.
func SlugifyWith(text, delim string) string {
	if text == "" {
		return ""
	}

	folded := fold(strings.ToLower(text))
	words := strings.FieldsFunc(folded, isSeparator)
	return strings.Join(words, delim)
}

// Truncate cuts a slug to at most n bytes without leaving a dangling delimiter.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], DefaultDelim)
}

func isSeparator(r rune) bool {
	if r > unicode.MaxASCII || unicode.IsControl(r) {
		return true
	}
	return strings.ContainsRune(separators, r)
}

func fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// letters that do not decompose
	return strings.NewReplacer("ß", "ss", "ø", "o", "æ", "ae", "œ", "oe", "đ", "d", "ł", "l").Replace(out)
}
