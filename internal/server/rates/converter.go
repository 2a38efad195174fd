package rates

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/currency"
	"github.com/shopspring/decimal"
)

// Conversion is the outcome of converting an amount into the base currency.
type Conversion struct {
	Amount int64
	Rate   string
}

type Converter struct {
	provider Provider
}

func NewConverter(p Provider) *Converter {
	return &Converter{provider: p}
}

// Convert turns minor units of from into minor units of to:
//
//	round(minor / 10^dec(from) * rate * 10^dec(to))
//
// Equal currencies short-circuit with rate "1.0" and no provider call.
func (c *Converter) Convert(ctx context.Context, minor int64, from, to string) (Conversion, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	src, ok := currency.Lookup(from)
	if !ok {
		return Conversion{}, common.ErrUnsupportedCurrency
	}
	dst, ok := currency.Lookup(to)
	if !ok {
		return Conversion{}, common.ErrUnsupportedCurrency
	}
	if from == to {
		return Conversion{Amount: minor, Rate: "1.0"}, nil
	}

	rate, err := c.provider.Rate(ctx, from, to)
	if err != nil {
		return Conversion{}, err
	}

	converted := decimal.New(minor, -src.Decimals).Mul(rate).Shift(dst.Decimals).Round(0)
	return Conversion{Amount: converted.IntPart(), Rate: rate.String()}, nil
}
