package valueobject

import (
	"github.com/shopspring/decimal"
)

// RoundAmount rounds a raw decimal amount half-up to 2 decimal places.
// All monetary persistence in the system stores 2dp values.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ApplyPercent returns base × rate/100 rounded to 2 decimal places.
// Used for GST derivation on line items and credit notes.
func ApplyPercent(base, rate decimal.Decimal) decimal.Decimal {
	return RoundAmount(base.Mul(rate).Div(decimal.NewFromInt(100)))
}
