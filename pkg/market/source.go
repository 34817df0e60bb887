package market

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// Source renders one titled block of the daily report.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (string, error)
}

type Ticker struct {
	Name   string `yaml:"name"`
	Symbol string `yaml:"symbol"`
}

type Coin struct {
	Symbol string `yaml:"symbol"`
	ID     string `yaml:"id"`
}

var hundred = decimal.NewFromInt(100)

// formatMoney renders d with the given number of decimals and thousands
// separators, e.g. 61234.5 -> "61,235".
func formatMoney(d decimal.Decimal, places int32) string {
	s := d.Abs().StringFixed(places)
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() && !d.Round(places).IsZero() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// signedPercent renders d as "+1.23%".
func signedPercent(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !d.IsNegative() {
		s = "+" + s
	}
	return s + "%"
}
