// Package normalize provides the string normalization used by sale-to-household
// matching: name tokenization, natural keys, zip codes, and product types.
package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes characters and drops combining marks, so "José"
// compares equal to "Jose".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes diacritical marks from a string.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// NameTokens normalizes a free-text name into comparison tokens: accents
// stripped, uppercased, non-alphabetic characters treated as separators.
func NameTokens(s string) []string {
	s = strings.ToUpper(StripAccents(s))

	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	return strings.Fields(b.String())
}

// Name returns the normalized form of a name: its tokens joined by single
// spaces. Used for exact first-name comparison during candidate filtering.
func Name(s string) string {
	return strings.Join(NameTokens(s), " ")
}

// Zip5 reduces a zip code to its 5-digit form. Returns "" when the input does
// not contain at least 5 digits.
func Zip5(s string) string {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) < 5 {
		return ""
	}
	return d[:5]
}

// HouseholdKey derives the deterministic natural key used for exact-match
// household lookup. Rows sharing a key within one upload must resolve to the
// same household.
func HouseholdKey(firstName, lastName, zip string) string {
	return fmt.Sprintf("%s-%s-%s",
		strings.ToLower(strings.TrimSpace(firstName)),
		strings.ToLower(strings.TrimSpace(lastName)),
		Zip5(zip),
	)
}

// productTypeAliases collapses the product-type spellings seen across carrier
// sales reports into canonical types.
var productTypeAliases = map[string]string{
	"HO3":         "HOME",
	"HO-3":        "HOME",
	"HO4":         "RENTERS",
	"HO-4":        "RENTERS",
	"HO6":         "CONDO",
	"HO-6":        "CONDO",
	"HOME":        "HOME",
	"HOMEOWNER":   "HOME",
	"HOMEOWNERS":  "HOME",
	"DWELLING":    "HOME",
	"FIRE":        "HOME",
	"AUTO":        "AUTO",
	"AUTOMOBILE":  "AUTO",
	"PA":          "AUTO",
	"MOTORCYCLE":  "AUTO",
	"RENTER":      "RENTERS",
	"RENTERS":     "RENTERS",
	"CONDO":       "CONDO",
	"UMBRELLA":    "UMBRELLA",
	"PUP":         "UMBRELLA",
	"LIFE":        "LIFE",
	"TERM LIFE":   "LIFE",
	"WHOLE LIFE":  "LIFE",
	"COMMERCIAL":  "COMMERCIAL",
	"BUSINESS":    "COMMERCIAL",
	"BOP":         "COMMERCIAL",
	"FLOOD":       "FLOOD",
	"EARTHQUAKE":  "EARTHQUAKE",
	"RECREATIONAL": "RECREATIONAL",
	"RV":          "RECREATIONAL",
	"BOAT":        "RECREATIONAL",
}

// ProductType normalizes a raw product-type string to its canonical form.
// Unknown types pass through uppercased and trimmed so they still compare
// consistently.
func ProductType(s string) string {
	t := strings.ToUpper(strings.TrimSpace(StripAccents(s)))
	if canonical, ok := productTypeAliases[t]; ok {
		return canonical
	}
	return t
}
