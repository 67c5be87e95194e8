package schema

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold returns a case-insensitive matching key for s using Turkish casing
// rules, so "İBRAHİM" and "ibrahim" fold to the same key. Surrounding
// whitespace is trimmed.
func Fold(s string) string {
	// Casers are stateful; one per call.
	return cases.Lower(language.Turkish).String(strings.TrimSpace(s))
}
