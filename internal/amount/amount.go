// =============================================================================
// Donation Receipts - Amount Normalizer
// =============================================================================
//
// Ledger amounts use the German convention: comma as decimal separator and
// dot as thousands separator ("1.234,56"). This module converts them in two
// directions:
//
//   Display: raw ledger string -> string with comma decimals, unrounded.
//            Used on single receipts where the ledger value is shown as-is.
//
//   Exact:   raw ledger string -> decimal.Decimal. Used for summation on
//            consolidated receipts. Amounts are never held in a float.
//
// MALFORMED AMOUNTS:
//   By default a malformed amount counts as zero and a warning is logged, so
//   one corrupt row does not stop the whole batch. The receipt total is then
//   too low; the warning is the only trace. Strict mode turns this into an
//   error for the affected donor.
//
// =============================================================================

package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits shown for exact amounts.
const Places = 2

// ErrMalformed is returned when an amount cannot be read as a decimal number.
var ErrMalformed = errors.New("malformed amount")

// =============================================================================
// DISPLAY NORMALIZATION
// =============================================================================

// Display returns raw with every '.' replaced by ','. No rounding is applied.
func Display(raw string) string {
	return strings.ReplaceAll(strings.TrimSpace(raw), ".", ",")
}

// =============================================================================
// EXACT NORMALIZATION
// =============================================================================

// Parse converts a German formatted amount to an exact decimal.
// Dots are dropped as thousands separators and the comma becomes the point.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}

	return d, nil
}

// Format renders d with exactly two fractional digits and a comma separator.
// Rounding is half-to-even.
func Format(d decimal.Decimal) string {
	return strings.Replace(d.StringFixedBank(Places), ".", ",", 1)
}

// Sum adds values in order.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer applies the zero fallback policy for malformed amounts.
type Normalizer struct {
	// Strict makes malformed amounts an error instead of zero.
	Strict bool

	Logger zerolog.Logger
}

// NewNormalizer returns a permissive Normalizer logging to logger.
func NewNormalizer(logger zerolog.Logger) *Normalizer {
	return &Normalizer{Logger: logger}
}

// Value parses raw. A malformed amount yields zero and a logged warning, or
// ErrMalformed in strict mode. line is only used for the log entry.
func (n *Normalizer) Value(raw string, line int) (decimal.Decimal, error) {
	d, err := Parse(raw)
	if err == nil {
		return d, nil
	}

	if n.Strict {
		return decimal.Zero, fmt.Errorf("line %d: %w", line, err)
	}

	n.Logger.Warn().
		Int("line", line).
		Str("amount", raw).
		Msg("malformed amount counted as 0,00")

	return decimal.Zero, nil
}
