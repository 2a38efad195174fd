// Package currency describes the supported currencies and converts between
// display strings and integer minor units.
package currency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Currency struct {
	Code     string `json:"code"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

var table = map[string]Currency{
	"USD": {"USD", "$", 2},
	"EUR": {"EUR", "€", 2},
	"GBP": {"GBP", "£", 2},
	"JPY": {"JPY", "¥", 0},
	"IDR": {"IDR", "Rp", 0},
	"AUD": {"AUD", "A$", 2},
	"CAD": {"CAD", "C$", 2},
	"SGD": {"SGD", "S$", 2},
}

const DefaultCode = "USD"

// Lookup returns the metadata for code (case-insensitive).
func Lookup(code string) (Currency, bool) {
	c, ok := table[strings.ToUpper(code)]
	return c, ok
}

// Get is Lookup with USD as the fallback for unknown codes.
func Get(code string) Currency {
	if c, ok := Lookup(code); ok {
		return c
	}
	return table[DefaultCode]
}

func Supported(code string) bool {
	_, ok := Lookup(code)
	return ok
}

// All returns every supported currency ordered by code.
func All() []Currency {
	out := make([]Currency, 0, len(table))
	for _, c := range table {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Decimal converts minor units to a decimal in major units.
func Decimal(minor int64, code string) decimal.Decimal {
	return decimal.New(minor, -Get(code).Decimals)
}

// FormatAmount renders minor units with the currency symbol, e.g. $10.00 or ¥1000.
func FormatAmount(minor int64, code string) string {
	c := Get(code)
	d := Decimal(minor, code)
	if d.IsNegative() {
		return "-" + c.Symbol + d.Neg().StringFixed(c.Decimals)
	}
	return c.Symbol + d.StringFixed(c.Decimals)
}

// ToMinor parses a human amount like "12.5" into minor units of code,
// rounding half away from zero to the currency's precision.
func ToMinor(amount, code string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", amount)
	}
	c := Get(code)
	return d.Shift(c.Decimals).Round(0).IntPart(), nil
}
