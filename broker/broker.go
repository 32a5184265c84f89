package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide accepts "buy" or "sell" in any case.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown side %q (want buy|sell)", s)
	}
}

// Account is a read-only view of the simulated position.
type Account struct {
	Instrument    string
	Currency      string
	Cash          decimal.Decimal
	Shares        int64
	Price         decimal.Decimal // zero until a price has been observed
	PreviousPrice decimal.Decimal
	LastUpdate    time.Time // zero when no price was ever validated
	Status        string
	MarketValue   decimal.Decimal
	Equity        decimal.Decimal
}

// Change is the move from the previous price to the current one.
func (a Account) Change() decimal.Decimal {
	return a.Price.Sub(a.PreviousPrice)
}

// ChangePercent is Change relative to the previous price, zero when there is
// no previous price.
func (a Account) ChangePercent() decimal.Decimal {
	if a.PreviousPrice.IsZero() {
		return decimal.Zero
	}
	return a.Change().Div(a.PreviousPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

type MarketOrderRequest struct {
	Side  Side
	Units int64
}

type OrderFill struct {
	TradeID string
	Side    Side
	Units   int64
	Price   decimal.Decimal
	Total   decimal.Decimal
	Time    time.Time
}

type Broker interface {
	GetAccount(ctx context.Context) (Account, error)
	// EstimateOrder prices an order without executing it.
	EstimateOrder(ctx context.Context, req MarketOrderRequest) (decimal.Decimal, error)
	CreateMarketOrder(ctx context.Context, req MarketOrderRequest) (OrderFill, error)
}
