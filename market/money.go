package market

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with the currency's symbol, grouping and
// minor unit, e.g. "¥1,000,000".
func FormatMoney(v decimal.Decimal, currency string) string {
	cur := money.New(0, currency).Currency()
	minor := v.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatPrice renders a price with two decimals regardless of the currency's
// minor unit, since index levels are quoted to the hundredth.
func FormatPrice(v decimal.Decimal) string {
	return v.StringFixed(2)
}

// FormatDelta renders a signed change, "+120.50" or "-3.00". Zero is "0.00".
func FormatDelta(v decimal.Decimal) string {
	if v.IsPositive() {
		return "+" + v.StringFixed(2)
	}
	return v.StringFixed(2)
}
