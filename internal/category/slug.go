// Package category normalizes free-text book categories into stable slugs.
package category

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
	spaces          = regexp.MustCompile(`\s+`)
)

// Slugify converts a category to a URL-safe slug.
// "Science Fiction" -> "science-fiction".
// "Histoire Économique" -> "histoire-economique".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
func Slugify(s string) string {
	// Decompose accented characters so the base letter survives.
	s = norm.NFKD.String(s)

	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}

// Display cleans a category for storage and display: whitespace collapsed
// and words title-cased. "  science   fiction " -> "Science Fiction".
func Display(s string) string {
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English).String(norm.NFC.String(s))
}
