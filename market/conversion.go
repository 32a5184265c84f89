package market

import (
	"github.com/shopspring/decimal"
)

// Conversion reports how a quote was normalized into the home currency.
type Conversion int

const (
	// AsIs means the quote was already in the home currency.
	AsIs Conversion = iota
	// Converted means the quote was multiplied by an FX rate.
	Converted
	// Assumed means the currency was unknown and the quote was taken as home
	// currency anyway.
	Assumed
)

func (c Conversion) String() string {
	switch c {
	case AsIs:
		return "as-is"
	case Converted:
		return "converted"
	case Assumed:
		return "assumed"
	default:
		return "unknown"
	}
}

// NeedsFX reports whether a quote in currency has to be converted through an
// FX pair to reach the home currency.
func NeedsFX(currency string) bool {
	if currency == Home {
		return false
	}
	_, ok := FXFor(currency)
	return ok
}

// ToHome normalizes a quote into the home currency.
//
// Case 1: the quote is in the home currency, it is returned unchanged.
// Case 2: a pair exists from currency to home, the quote is multiplied by rate.
// Case 3: anything else is taken as home currency and flagged Assumed so the
// caller can warn about it.
func ToHome(v decimal.Decimal, currency string, rate decimal.Decimal) (decimal.Decimal, Conversion) {
	if currency == Home {
		return v, AsIs
	}
	if NeedsFX(currency) {
		return v.Mul(rate), Converted
	}
	return v, Assumed
}
