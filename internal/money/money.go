// Package money converts between user-facing decimal amounts and the exact
// integer minor units (cents) stored in the database.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents is the largest amount that fits a DECIMAL(10,2) column.
const MaxCents int64 = 99_999_999_99

var (
	ErrInvalidAmount = errors.New("amount must be a number such as 12.50")
	ErrNotPositive   = errors.New("amount must be positive")
	ErrTooPrecise    = errors.New("amount can have at most 2 decimal places")
	ErrTooLarge      = errors.New("amount is too large")
)

var hundred = decimal.NewFromInt(100)

// Parse converts a decimal string such as "12.5" or "1,234.50" into cents.
// Only positive amounts with at most two fractional digits are accepted.
func Parse(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrNotPositive
	}
	if !d.Equal(d.Truncate(2)) {
		return 0, ErrTooPrecise
	}
	cents := d.Mul(hundred)
	if cents.GreaterThan(decimal.NewFromInt(MaxCents)) {
		return 0, ErrTooLarge
	}
	return cents.IntPart(), nil
}

// Decimal returns cents as an exact decimal value.
func Decimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// String renders cents as a plain two-decimal number, e.g. "1234.50".
func String(cents int64) string {
	return Decimal(cents).StringFixed(2)
}

// Format renders cents for display with a currency symbol and thousands
// separators, e.g. "₹1,234.50" or "-₹50.00".
func Format(cents int64, symbol string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole, frac, _ := strings.Cut(String(cents), ".")
	return sign + symbol + group(whole) + "." + frac
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Percent returns part/whole*100, or 0 when whole is zero.
func Percent(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	p, _ := decimal.NewFromInt(part).Div(decimal.NewFromInt(whole)).Mul(hundred).Float64()
	return p
}
