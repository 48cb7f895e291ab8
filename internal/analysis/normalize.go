package analysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// lower applies Spanish lower-casing. Casers are stateful, so one is built per call.
func lower(text string) string {
	return cases.Lower(language.Spanish).String(text)
}

// fold strips combining marks so "reprobó" and "reprobo" compare equal.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// Normalize lower-cases, accent-folds and trims text for keyword matching.
func Normalize(text string) string {
	return fold(lower(strings.TrimSpace(text)))
}

// words splits already lower-cased text into letter runs.
func words(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// containsAny reports whether normalized text contains any of the normalized needles.
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func normalizeAll(list ...string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = Normalize(s)
	}
	return out
}
