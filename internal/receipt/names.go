package receipt

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ConsolidatedSuffix ends the file name of every consolidated receipt.
const ConsolidatedSuffix = "sammel"

var germanLetters = strings.NewReplacer(
	"ä", "ae", "ö", "oe", "ü", "ue",
	"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
	"ß", "ss",
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SafeName turns s into a file name component made of ASCII letters,
// digits, '_' and '-'. Umlauts are transliterated, other accents dropped,
// and anything else becomes '_'. Leading and trailing '_' are trimmed.
func SafeName(s string) string {
	s = germanLetters.Replace(s)
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '_' || r == '-':
			return r
		default:
			return '_'
		}
	}, s)

	return strings.Trim(mapped, "_")
}

// SingleName is the file base name of a single receipt:
// <last>_<first>_<date with dots as dashes>.
func SingleName(lastName, firstName, donationDate string) string {
	parts := []string{SafeName(lastName), SafeName(firstName)}
	if date := SafeName(strings.ReplaceAll(donationDate, ".", "-")); date != "" {
		parts = append(parts, date)
	}
	return strings.Join(parts, "_")
}

// ConsolidatedName is the file base name of a consolidated receipt.
func ConsolidatedName(lastName, firstName string) string {
	return SafeName(lastName) + "_" + SafeName(firstName) + "_" + ConsolidatedSuffix
}
