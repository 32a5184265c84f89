package market

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Band is an inclusive [Min, Max] range of plausible values.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func NewBand(lo, hi int64) Band {
	return Band{Min: decimal.NewFromInt(lo), Max: decimal.NewFromInt(hi)}
}

func (b Band) Contains(v decimal.Decimal) bool {
	return v.GreaterThanOrEqual(b.Min) && v.LessThanOrEqual(b.Max)
}

func (b Band) String() string {
	return fmt.Sprintf("[%s, %s]", b.Min, b.Max)
}

// PriceUpdate is what a price feed hands to the ledger: either a validated
// price, or NoUpdate with the reason the fetch was discarded.
type PriceUpdate struct {
	Symbol string
	Price  decimal.Decimal
	Time   time.Time
	Reason error // nil when the price was validated
}

// Validated wraps an accepted price.
func Validated(symbol string, p decimal.Decimal, at time.Time) PriceUpdate {
	return PriceUpdate{Symbol: symbol, Price: p, Time: at}
}

// NoUpdate reports a fetch that produced nothing usable.
func NoUpdate(symbol string, reason error) PriceUpdate {
	if reason == nil {
		reason = fmt.Errorf("no update")
	}
	return PriceUpdate{Symbol: symbol, Reason: reason}
}

func (u PriceUpdate) OK() bool { return u.Reason == nil }

func (u PriceUpdate) String() string {
	if !u.OK() {
		return fmt.Sprintf("%s: no update (%v)", u.Symbol, u.Reason)
	}
	return fmt.Sprintf("%s: %s", u.Symbol, u.Price.StringFixed(2))
}
