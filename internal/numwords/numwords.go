// =============================================================================
// Donation Receipts - Number-to-Words Converter
// =============================================================================
//
// German donation receipts state the amount twice: in digits and in words
// ("Einhundertfünfundzwanzig Euro und 25/100"). This module renders the
// words form.
//
// STRUCTURE:
//   CardinalSpeller   spells a whole number in one language. Spellers are
//                     registered per locale; the CLI looks the configured
//                     locale up before touching any input and stops if it
//                     is missing.
//   Converter         splits an amount into currency units and cents and
//                     builds "<Words> <Currency>[ und NN/100]".
//
// Both entry points, FromDisplay (raw ledger string) and FromDecimal (exact
// sum), end in the same formatting function so they agree for equal values.
//
// =============================================================================

package numwords

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/donation-receipts/internal/amount"
)

var (
	// ErrUnsupportedLocale is returned by Lookup for locales without a speller.
	ErrUnsupportedLocale = errors.New("no number speller for locale")

	// ErrMalformedAmount is returned when an amount cannot be split into
	// currency units and cents.
	ErrMalformedAmount = errors.New("amount cannot be spelled")

	// ErrOutOfRange is returned by spellers for numbers they cannot spell.
	ErrOutOfRange = errors.New("number out of range")
)

// CardinalSpeller spells a whole number as words.
type CardinalSpeller interface {
	Cardinal(n int64) (string, error)
}

// =============================================================================
// REGISTRY
// =============================================================================

var spellers = map[string]CardinalSpeller{
	"de": German{},
}

// Register adds or replaces the speller for locale.
func Register(locale string, speller CardinalSpeller) {
	spellers[strings.ToLower(locale)] = speller
}

// Lookup returns the speller for locale.
func Lookup(locale string) (CardinalSpeller, error) {
	speller, ok := spellers[strings.ToLower(locale)]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnsupportedLocale, locale, strings.Join(Locales(), ", "))
	}
	return speller, nil
}

// Locales lists the registered locales in sorted order.
func Locales() []string {
	locales := make([]string, 0, len(spellers))
	for locale := range spellers {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// =============================================================================
// CONVERTER
// =============================================================================

// Converter renders currency amounts as words.
type Converter struct {
	speller  CardinalSpeller
	currency string
}

// NewConverter returns a Converter naming the currency unit currency ("Euro").
func NewConverter(speller CardinalSpeller, currency string) *Converter {
	return &Converter{speller: speller, currency: currency}
}

// FromDisplay spells a raw ledger amount such as "30,50" or "30.5".
// A missing fractional part counts as "00"; a one-digit part is padded ("5" -> 50).
func (c *Converter) FromDisplay(raw string) (string, error) {
	parts := strings.Split(amount.Display(raw), ",")
	if len(parts) > 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}

	units, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}

	cents := "00"
	if len(parts) == 2 {
		cents = (parts[1] + "00")[:2]
	}
	sub, err := strconv.Atoi(cents)
	if err != nil || sub < 0 {
		return "", fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}

	negative := strings.HasPrefix(strings.TrimSpace(parts[0]), "-")
	if negative {
		units = -units
	}

	return c.spell(negative, units, sub)
}

// FromDecimal spells an exact amount. Cents are rounded half-to-even.
func (c *Converter) FromDecimal(d decimal.Decimal) (string, error) {
	negative := d.IsNegative()
	cents := d.Abs().Shift(2).RoundBank(0)
	if cents.GreaterThan(decimal.NewFromInt(1 << 62)) {
		return "", fmt.Errorf("%w: %s", ErrMalformedAmount, d)
	}

	total := cents.IntPart()
	return c.spell(negative, total/100, int(total%100))
}

// spell builds "<Words> <Currency>[ und NN/100]" from a non-negative split.
func (c *Converter) spell(negative bool, units int64, cents int) (string, error) {
	words, err := c.speller.Cardinal(units)
	if err != nil {
		return "", fmt.Errorf("failed to spell %d: %w", units, err)
	}
	if negative {
		words = "minus " + words
	}

	text := capitalize(words) + " " + c.currency
	if cents != 0 {
		text += fmt.Sprintf(" und %02d/100", cents)
	}

	return text, nil
}

// capitalize upper-cases the first letter and leaves the rest alone, so nouns
// like "Million" keep their capital.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
