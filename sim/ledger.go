// Package sim holds the simulated portfolio ledger: cash, shares, the last
// validated price and a bounded history of executed orders.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/internal/id"
	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// Order rejections. They are returned wrapped with the amounts involved;
// match them with errors.Is.
var (
	ErrInvalidQuantity    = errors.New("quantity must be a positive whole number")
	ErrPriceUnavailable   = errors.New("price unavailable")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// Status describes the price feed as seen by the ledger.
type Status string

const (
	// StatusPending means no fetch has completed yet.
	StatusPending Status = "pending"
	// StatusLive means the last fetch produced a validated price.
	StatusLive Status = "live"
	// StatusStale means the last fetch failed; the previous price is kept.
	StatusStale Status = "stale"
	// StatusDisconnected means no fetch has ever succeeded; the price, if
	// any, is the seed.
	StatusDisconnected Status = "disconnected"
)

type Options struct {
	Instrument  string
	Currency    string
	InitialCash decimal.Decimal
	// SeedPrice is used as the price when the very first fetch fails.
	// Zero disables seeding: orders stay unavailable until a fetch succeeds.
	SeedPrice  decimal.Decimal
	MaxHistory int
}

func DefaultOptions() Options {
	return Options{
		Instrument:  "^N225",
		Currency:    market.Home,
		InitialCash: DefaultInitialCash,
		SeedPrice:   DefaultSeedPrice,
		MaxHistory:  DefaultMaxHistory,
	}
}

// Ledger is the only writer of the portfolio state. Every operation holds
// the ledger lock for its whole duration, so operations never interleave and
// must not call back into the ledger.
type Ledger struct {
	mu     sync.Mutex
	opts   Options
	state  State
	status Status
	logger *log.Logger
	now    func() time.Time
}

func New(opts Options, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.Currency == "" {
		opts.Currency = market.Home
	}
	return &Ledger{
		opts:   opts,
		state:  Default(opts.InitialCash),
		status: StatusPending,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock replaces the wall clock used to stamp updates and transactions.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Restore replaces the state with one loaded from storage. The history is
// trimmed to the configured bound; any other invariant violation rejects the
// state and leaves the ledger untouched.
func (l *Ledger) Restore(s State) error {
	s = s.Clone()
	if len(s.Transactions) > l.opts.MaxHistory {
		s.Transactions = s.Transactions[:l.opts.MaxHistory]
	}
	if err := s.Check(l.opts.MaxHistory); err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
	switch {
	case !s.LastUpdate.IsZero():
		// the restored price is what the last session saw, not a fresh quote
		l.status = StatusStale
	case s.Price.IsPositive():
		l.status = StatusDisconnected
	default:
		l.status = StatusPending
	}
	return nil
}

func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

func (l *Ledger) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// ApplyPriceUpdate merges a feed result into the state.
//
// A validated price moves the current price into the previous one (or uses
// the new price for both on the first observation) and stamps the update
// time. NoUpdate keeps both prices, except on the very first observation
// where the seed price is installed. Updates apply in call order: a late
// response overwrites a newer one.
func (l *Ledger) ApplyPriceUpdate(u market.PriceUpdate) Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	if u.OK() && !u.Price.IsPositive() {
		u = market.NoUpdate(u.Symbol, fmt.Errorf("non-positive price %s", u.Price))
	}

	if !u.OK() {
		l.applyNoUpdateLocked(u)
		return l.status
	}

	if l.state.LastUpdate.IsZero() {
		// first observation; a seed price is not one
		l.state.PreviousPrice = u.Price
	} else {
		l.state.PreviousPrice = l.state.Price
	}
	l.state.Price = u.Price
	l.state.LastUpdate = l.now().UTC()
	l.status = StatusLive

	l.logger.Debug().
		Str("price", u.Price.String()).
		Str("previous", l.state.PreviousPrice.String()).
		Msg("price applied")
	return l.status
}

func (l *Ledger) applyNoUpdateLocked(u market.PriceUpdate) {
	switch {
	case l.state.Price.IsZero():
		l.status = StatusDisconnected
		if l.opts.SeedPrice.IsPositive() {
			l.state.Price = l.opts.SeedPrice
			l.state.PreviousPrice = l.opts.SeedPrice
			l.logger.Warn().
				Err(u.Reason).
				Str("seed", l.opts.SeedPrice.String()).
				Msg("first price fetch failed, using seed price")
			return
		}
	case l.status == StatusLive:
		l.status = StatusStale
	}
	l.logger.Info().Err(u.Reason).Str("status", string(l.status)).Msg("price unchanged")
}

// PreviewOrder returns the cost of buying, or the proceeds of selling,
// quantity units at the current price. It never changes the state.
func (l *Ledger) PreviewOrder(side broker.Side, quantity int64) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := broker.ParseSide(string(side)); err != nil {
		return decimal.Zero, err
	}
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if l.state.Price.IsZero() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return l.state.Price.Mul(decimal.NewFromInt(quantity)), nil
}

// ExecuteBuy debits cash and credits shares at the current price, or fails
// without changing anything.
func (l *Ledger) ExecuteBuy(quantity int64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cost, err := l.checkOrderLocked(quantity)
	if err != nil {
		return Transaction{}, err
	}
	if cost.GreaterThan(l.state.Cash) {
		return Transaction{}, fmt.Errorf("%w: cost %s exceeds cash %s", ErrInsufficientFunds, cost, l.state.Cash)
	}

	tx := l.newTransactionLocked(broker.Buy, quantity, cost)
	l.state.Cash = l.state.Cash.Sub(cost)
	l.state.Shares += quantity
	l.state.record(tx, l.opts.MaxHistory)

	l.logTransaction(tx)
	return tx, nil
}

// ExecuteSell credits cash and debits shares at the current price, or fails
// without changing anything.
func (l *Ledger) ExecuteSell(quantity int64) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	proceeds, err := l.checkOrderLocked(quantity)
	if err != nil {
		return Transaction{}, err
	}
	if quantity > l.state.Shares {
		return Transaction{}, fmt.Errorf("%w: selling %d, holding %d", ErrInsufficientShares, quantity, l.state.Shares)
	}

	tx := l.newTransactionLocked(broker.Sell, quantity, proceeds)
	l.state.Cash = l.state.Cash.Add(proceeds)
	l.state.Shares -= quantity
	l.state.record(tx, l.opts.MaxHistory)

	l.logTransaction(tx)
	return tx, nil
}

// Reset discards the portfolio and starts over from the defaults. Asking the
// user for confirmation is the caller's job.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = Default(l.opts.InitialCash)
	l.status = StatusPending
	l.logger.Info().Str("cash", l.opts.InitialCash.String()).Msg("portfolio reset")
}

func (l *Ledger) checkOrderLocked(quantity int64) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if l.state.Price.IsZero() {
		return decimal.Zero, ErrPriceUnavailable
	}
	return l.state.Price.Mul(decimal.NewFromInt(quantity)), nil
}

func (l *Ledger) newTransactionLocked(side broker.Side, quantity int64, total decimal.Decimal) Transaction {
	at := l.now().UTC()
	return Transaction{
		ID:         id.At(at),
		Side:       side,
		Quantity:   quantity,
		UnitPrice:  l.state.Price,
		Total:      total,
		ExecutedAt: at,
	}
}

func (l *Ledger) logTransaction(tx Transaction) {
	l.logger.Info().
		Str("id", tx.ID).
		Str("side", string(tx.Side)).
		Int64("quantity", tx.Quantity).
		Str("price", tx.UnitPrice.String()).
		Str("total", tx.Total.String()).
		Str("cash", l.state.Cash.String()).
		Int64("shares", l.state.Shares).
		Msg("order executed")
}

// broker.Broker

func (l *Ledger) GetAccount(ctx context.Context) (broker.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accountLocked(), nil
}

func (l *Ledger) accountLocked() broker.Account {
	s := l.state
	return broker.Account{
		Instrument:    l.opts.Instrument,
		Currency:      l.opts.Currency,
		Cash:          s.Cash,
		Shares:        s.Shares,
		Price:         s.Price,
		PreviousPrice: s.PreviousPrice,
		LastUpdate:    s.LastUpdate,
		Status:        string(l.status),
		MarketValue:   s.MarketValue(),
		Equity:        s.Equity(),
	}
}

func (l *Ledger) EstimateOrder(ctx context.Context, req broker.MarketOrderRequest) (decimal.Decimal, error) {
	return l.PreviewOrder(req.Side, req.Units)
}

func (l *Ledger) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	var (
		tx  Transaction
		err error
	)
	switch req.Side {
	case broker.Buy:
		tx, err = l.ExecuteBuy(req.Units)
	case broker.Sell:
		tx, err = l.ExecuteSell(req.Units)
	default:
		return broker.OrderFill{}, fmt.Errorf("create market order: unknown side %q", req.Side)
	}
	if err != nil {
		return broker.OrderFill{}, err
	}
	return tx.Fill(), nil
}

var _ broker.Broker = (*Ledger)(nil)
