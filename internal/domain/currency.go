package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the display currency. It only affects formatting; stored amounts
// are never converted.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyCOP Currency = "COP"
	CurrencyEUR Currency = "EUR"

	// DefaultCurrency applies when the preference slot is empty.
	DefaultCurrency = CurrencyUSD

	// CurrencyPreferenceKey is the durable key-value slot holding the selector.
	CurrencyPreferenceKey = "ff_currency"
)

// ParseCurrency validates a stored or submitted currency code.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case CurrencyUSD:
		return CurrencyUSD, nil
	case CurrencyCOP:
		return CurrencyCOP, nil
	case CurrencyEUR:
		return CurrencyEUR, nil
	}
	return "", fmt.Errorf("unknown currency %q", s)
}

// Symbol returns the display symbol for the currency.
func (c Currency) Symbol() string {
	if c == CurrencyEUR {
		return "€"
	}
	return "$"
}

// Format renders an amount with two decimals, thousands separators, the
// currency symbol, and the " COP" suffix the UI shows for Colombian pesos.
func (c Currency) Format(v decimal.Decimal) string {
	s := c.Symbol() + groupThousands(v.Abs().StringFixed(2))
	if v.IsNegative() {
		s = "-" + s
	}
	if c == CurrencyCOP {
		s += " COP"
	}
	return s
}

// groupThousands inserts commas into the integer part of a non-negative
// fixed-point string.
func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	pre := len(intPart) % 3
	if pre > 0 {
		b.WriteString(intPart[:pre])
	}
	for i := pre; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	return b.String() + frac
}
