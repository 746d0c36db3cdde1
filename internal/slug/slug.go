// Package slug derives file names from ponto titles.
//
// Two derivations exist. FromTitle is used when documents are first
// generated and only transliterates a fixed set of accented letters.
// Filename is used by the normalizer and strips every combining
// diacritical mark plus any character that is not a word character.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	accented   = "áàãâäéèêëíìîïóòõôöúùûüñçÁÀÃÂÄÉÈÊËÍÌÎÏÓÒÕÔÖÚÙÛÜÑÇ"
	unaccented = "aaaaaeeeeiiiiooooouuuuncAAAAAEEEEIIIIOOOOOUUUUNC"
)

// Space is the body of a regexp character class matching the same
// whitespace as ECMAScript's \s: ASCII blanks plus no-break space, the
// U+2000 spaces, line and paragraph separators and the byte order mark.
// RE2's \s covers the ASCII part only.
const Space = `\t\n\v\f\r \x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

var (
	transliteration = buildTransliteration()
	whitespaceRe    = regexp.MustCompile(`[` + Space + `]+`)
	nonWordRe       = regexp.MustCompile(`[^\w` + Space + `]`)

	// combiningMarks is the Combining Diacritical Marks block, U+0300–U+036F.
	combiningMarks = &unicode.RangeTable{
		R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
	}
)

func buildTransliteration() map[rune]rune {
	from, to := []rune(accented), []rune(unaccented)
	m := make(map[rune]rune, len(from))
	for i, r := range from {
		m[r] = to[i]
	}
	return m
}

// RemoveAccents replaces each character of the fixed accented set with its
// plain counterpart. Any other character passes through unchanged.
func RemoveAccents(s string) string {
	return strings.Map(func(r rune) rune {
		if plain, ok := transliteration[r]; ok {
			return plain
		}
		return r
	}, s)
}

// FromTitle returns the slug used for generated file names:
// "Exaltação a Oxóssi" becomes "exaltacao-a-oxossi".
// Leading and trailing whitespace is not trimmed.
func FromTitle(title string) string {
	return strings.ToLower(whitespaceRe.ReplaceAllString(RemoveAccents(title), "-"))
}

// IsSpace reports whether r is whitespace in the sense of Space.
func IsSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		0x00a0, 0x1680, 0x2028, 0x2029, 0x202f, 0x205f, 0x3000, 0xfeff:
		return true
	}
	return r >= 0x2000 && r <= 0x200a
}

// TrimSpace removes leading and trailing Space characters.
func TrimSpace(s string) string {
	return strings.TrimFunc(s, IsSpace)
}

// StripDiacritics decomposes s and drops combining diacritical marks.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Filename returns the normalized file stem for a title:
// lowercase, no diacritics, word characters only, hyphen separated.
func Filename(title string) string {
	s := StripDiacritics(strings.ToLower(title))
	s = nonWordRe.ReplaceAllString(s, "")
	s = TrimSpace(s)
	return whitespaceRe.ReplaceAllString(s, "-")
}
