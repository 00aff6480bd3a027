package event

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// folder strips combining marks so "café" and "cafe" compare equal.
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritics, producing the canonical form
// used for keyword matching. Both stored text and query keywords go through
// the same fold so substring comparison is case- and diacritic-insensitive.
func Fold(s string) string {
	folded, _, err := transform.String(folder, s)
	if err != nil {
		// Transform failure leaves the input usable as-is; matching just
		// degrades to case-insensitive for that string.
		folded = s
	}
	return strings.ToLower(folded)
}
