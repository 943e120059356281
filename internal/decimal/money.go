package decimal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// ParseLocale parses a numeric string that may use the Serbian locale
// convention: comma as decimal separator and optional dots as thousands
// separators ("1.234,56"). A plain "1234.56" still parses. Returns zero
// and an error for anything non-numeric.
func ParseLocale(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		// Dots before a comma can only be thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// ParseOrZero parses a locale-tolerant numeric string, defaulting to zero
// when the value is empty or unparseable.
func ParseOrZero(s string) decimal.Decimal {
	d, err := ParseLocale(s)
	if err != nil {
		return Zero
	}
	return d
}

// Div divides a by b, rounds to 2 places
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return Zero
	}
	return a.Div(b).Round(2)
}

// CalculateVAT computes VAT amount: amount * (rate/100), rounded to 2
// places (RSD amounts carry para).
func CalculateVAT(amount decimal.Decimal, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return Zero
	}
	hundred := decimal.NewFromInt(100)
	return amount.Mul(rate).Div(hundred).Round(2)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
