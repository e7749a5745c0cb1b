// Package sanitize normalizes catalog titles and raw model output before they
// are measured, parsed or written back.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxTitleLength is the character budget for a catalog title.
const MaxTitleLength = 50

var (
	// titlePunctuation is stripped from catalog titles before measuring them.
	titlePunctuation = strings.NewReplacer(",", "", ".", "", `"`, "", "'", "")

	// enumerationRegex matches a candidate list marker such as "3. ", "12) "
	// or the compact "1.". See enumerationMarker for the full rule.
	enumerationRegex = regexp.MustCompile(`^\s*(\d+)[.)](\s*)`)

	// nonTitleCharRegex matches anything that may not appear in a model title.
	nonTitleCharRegex = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

	jsonTextReplacer = strings.NewReplacer(
		"```json", "",
		"```JSON", "",
		"```", "",
		"“", `"`,
		"”", `"`,
		"‘", "'",
		"’", "'",
		"`", `"`,
		"\r", "",
		"\n", "",
	)

	// jsonTextAllQuotesReplacer also turns smart single quotes into double
	// quotes, for replies that use them as JSON delimiters.
	jsonTextAllQuotesReplacer = strings.NewReplacer(
		"```json", "",
		"```JSON", "",
		"```", "",
		"“", `"`,
		"”", `"`,
		"‘", `"`,
		"’", `"`,
		"`", `"`,
		"\r", "",
		"\n", "",
	)
)

// enumerationMarker returns the leading list marker of s. A number followed by
// '.' or ')' is a marker when whitespace or a letter comes next, so "1. Mug"
// and "1.Mug" are numbered while "2.5mm" is not.
func enumerationMarker(s string) (string, bool) {
	m := enumerationRegex.FindStringSubmatchIndex(s)
	if m == nil {
		return "", false
	}
	if m[5] > m[4] {
		return s[:m[1]], true
	}
	next, _ := utf8.DecodeRuneInString(s[m[1]:])
	if next != utf8.RuneError && unicode.IsLetter(next) {
		return s[:m[1]], true
	}
	return "", false
}

// CleanTitle removes commas, periods and quotes from a catalog title.
func CleanTitle(s string) string {
	return titlePunctuation.Replace(s)
}

// CleanModelTitle normalizes one line of a title-reduction response.
func CleanModelTitle(s string) string {
	if marker, ok := enumerationMarker(s); ok {
		s = s[len(marker):]
	}
	s = nonTitleCharRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if len(s) > MaxTitleLength {
		// only ASCII survives the regex above, so byte slicing is safe
		s = strings.TrimSpace(s[:MaxTitleLength])
	}
	return s
}

// HasEnumeration reports whether a response line starts with a list marker.
func HasEnumeration(s string) bool {
	_, ok := enumerationMarker(s)
	return ok
}

// EnumerationIndex returns the number of a leading list marker, or 0.
func EnumerationIndex(s string) int {
	m, ok := enumerationMarker(s)
	if !ok {
		return 0
	}
	n := 0
	for _, r := range strings.TrimSpace(m) {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			return 0
		}
	}
	return n
}

// CleanModelJSONText strips code fences, smart quotes, backticks and newlines
// from a response that is expected to carry a JSON object.
func CleanModelJSONText(s string) string {
	return strings.TrimSpace(jsonTextReplacer.Replace(s))
}

// CleanModelJSONTextAllQuotes is CleanModelJSONText with smart single quotes
// mapped to double quotes as well. Apostrophes inside values become invalid
// JSON, so it is only a second attempt.
func CleanModelJSONTextAllQuotes(s string) string {
	return strings.TrimSpace(jsonTextAllQuotesReplacer.Replace(s))
}

// TitleLength is the length of s measured against MaxTitleLength.
func TitleLength(s string) int {
	return utf8.RuneCountInString(s)
}

// IsLongTitle reports whether a sanitized title exceeds the budget.
func IsLongTitle(s string) bool {
	return TitleLength(s) > MaxTitleLength
}
