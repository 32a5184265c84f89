package sim

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultMaxHistory = 50

var (
	DefaultInitialCash = decimal.NewFromInt(1_000_000)
	DefaultSeedPrice   = decimal.NewFromInt(38_000)
)

// State is the whole simulated portfolio. The ledger owns the live copy;
// everything else sees clones.
type State struct {
	Cash          decimal.Decimal
	Shares        int64
	Price         decimal.Decimal // zero means no price observed yet
	PreviousPrice decimal.Decimal
	LastUpdate    time.Time // zero until a price is validated

	// Transactions is most-recent-first.
	Transactions []Transaction
}

// Default returns a fresh portfolio holding only cash.
func Default(cash decimal.Decimal) State {
	return State{
		Cash:          cash,
		Price:         decimal.Zero,
		PreviousPrice: decimal.Zero,
		Transactions:  []Transaction{},
	}
}

func (s State) Clone() State {
	c := s
	c.Transactions = slices.Clone(s.Transactions)
	if c.Transactions == nil {
		c.Transactions = []Transaction{}
	}
	return c
}

func (s State) MarketValue() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(s.Shares))
}

func (s State) Equity() decimal.Decimal {
	return s.Cash.Add(s.MarketValue())
}

// Check reports the first violated invariant, if any.
func (s State) Check(maxHistory int) error {
	switch {
	case s.Cash.IsNegative():
		return fmt.Errorf("cash balance %s is negative", s.Cash)
	case s.Shares < 0:
		return fmt.Errorf("share count %d is negative", s.Shares)
	case s.Price.IsNegative():
		return fmt.Errorf("current price %s is negative", s.Price)
	case s.PreviousPrice.IsNegative():
		return fmt.Errorf("previous price %s is negative", s.PreviousPrice)
	case maxHistory > 0 && len(s.Transactions) > maxHistory:
		return fmt.Errorf("transaction log holds %d entries, limit is %d", len(s.Transactions), maxHistory)
	}
	return nil
}

// record prepends tx and drops whatever falls past max.
func (s *State) record(tx Transaction, max int) {
	s.Transactions = slices.Insert(s.Transactions, 0, tx)
	if max > 0 && len(s.Transactions) > max {
		s.Transactions = s.Transactions[:max:max]
	}
}
