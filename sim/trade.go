package sim

import (
	"time"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/shopspring/decimal"
)

// Transaction is an executed order. It is never modified after creation:
// Total is fixed at the execution price even when the price moves later.
type Transaction struct {
	ID         string
	Side       broker.Side
	Quantity   int64
	UnitPrice  decimal.Decimal
	Total      decimal.Decimal
	ExecutedAt time.Time
}

func (t Transaction) Fill() broker.OrderFill {
	return broker.OrderFill{
		TradeID: t.ID,
		Side:    t.Side,
		Units:   t.Quantity,
		Price:   t.UnitPrice,
		Total:   t.Total,
		Time:    t.ExecutedAt,
	}
}
