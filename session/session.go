// Package session runs one portfolio: it feeds prices from the quote adapter
// into the ledger and persists the state after every change.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultMinRefresh   = 5 * time.Second
)

// ErrThrottled is returned by RefreshNow when a manual refresh comes too
// soon after the previous one.
var ErrThrottled = errors.New("refresh throttled, try again shortly")

// Feed produces validated prices. *quote.Adapter implements it.
type Feed interface {
	FetchValidatedPrice(ctx context.Context, symbol string) market.PriceUpdate
}

type Options struct {
	Symbol       string
	Key          string // store key of the portfolio blob
	PollInterval time.Duration
	MinRefresh   time.Duration
}

type Session struct {
	feed    Feed
	ledger  *sim.Ledger
	store   journal.Store
	opts    Options
	logger  *log.Logger
	limiter *rate.Limiter

	saveMu sync.Mutex
}

func New(feed Feed, ledger *sim.Ledger, store journal.Store, opts Options, logger *log.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.Symbol == "" {
		opts.Symbol = "^N225"
	}
	if opts.Key == "" {
		opts.Key = journal.DefaultKey
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MinRefresh <= 0 {
		opts.MinRefresh = DefaultMinRefresh
	}
	return &Session{
		feed:    feed,
		ledger:  ledger,
		store:   store,
		opts:    opts,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(opts.MinRefresh), 1),
	}
}

// Load restores the persisted portfolio into the ledger. Unreadable or
// invalid state is logged and the ledger keeps its defaults. A price stored
// less than MinRefresh ago counts against the manual refresh limit, so
// back-to-back invocations are throttled too.
func (s *Session) Load(ctx context.Context) {
	defaults := s.ledger.Snapshot()
	st, err := journal.Load(ctx, s.store, s.opts.Key, defaults, s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.opts.Key).Msg("persisted portfolio unusable, starting fresh")
	}
	if err := s.ledger.Restore(st); err != nil {
		s.logger.Warn().Err(err).Str("key", s.opts.Key).Msg("persisted portfolio rejected, starting fresh")
		return
	}
	if !st.LastUpdate.IsZero() {
		s.limiter.AllowN(st.LastUpdate, 1)
	}
	s.logger.Debug().
		Str("cash", st.Cash.String()).
		Int64("shares", st.Shares).
		Int("transactions", len(st.Transactions)).
		Msg("portfolio loaded")
}

// save persists the current snapshot. Failures are logged and not retried;
// the in-memory state stays authoritative.
func (s *Session) save(ctx context.Context) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if err := journal.Save(ctx, s.store, s.opts.Key, s.ledger.Snapshot()); err != nil {
		s.logger.Error().Err(err).Str("key", s.opts.Key).Msg("save failed")
	}
}

// Refresh fetches one price and applies it to the ledger.
func (s *Session) Refresh(ctx context.Context) (market.PriceUpdate, sim.Status) {
	u := s.feed.FetchValidatedPrice(ctx, s.opts.Symbol)
	st := s.ledger.ApplyPriceUpdate(u)
	s.save(ctx)
	return u, st
}

// RefreshNow is a user-initiated Refresh, rate limited to one per
// MinRefresh. It may overlap with the periodic refresh.
func (s *Session) RefreshNow(ctx context.Context) (market.PriceUpdate, sim.Status, error) {
	if !s.limiter.Allow() {
		return market.PriceUpdate{}, s.ledger.Status(), ErrThrottled
	}
	u, st := s.Refresh(ctx)
	return u, st, nil
}

// Run refreshes immediately and then every PollInterval until ctx is done.
// onUpdate, when set, is called with the account after each refresh.
func (s *Session) Run(ctx context.Context, onUpdate func(broker.Account)) error {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	s.logger.Info().
		Str("symbol", s.opts.Symbol).
		Dur("interval", s.opts.PollInterval).
		Msg("watching")

	for {
		s.Refresh(ctx)
		if onUpdate != nil {
			acct, _ := s.ledger.GetAccount(ctx)
			onUpdate(acct)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RefreshOnInput calls RefreshNow once per line read from r until r is
// exhausted or ctx is done. It runs alongside Run, so a manual refresh can
// overlap a periodic one. report, when set, receives every result.
func (s *Session) RefreshOnInput(ctx context.Context, r io.Reader, report func(market.PriceUpdate, sim.Status, error)) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		u, st, err := s.RefreshNow(ctx)
		if errors.Is(err, ErrThrottled) {
			s.logger.Info().Msg("manual refresh throttled")
		}
		if report != nil {
			report(u, st, err)
		}
	}
	return sc.Err()
}

func (s *Session) Preview(side broker.Side, quantity int64) (decimal.Decimal, error) {
	return s.ledger.PreviewOrder(side, quantity)
}

func (s *Session) Buy(ctx context.Context, quantity int64) (sim.Transaction, error) {
	tx, err := s.ledger.ExecuteBuy(quantity)
	if err != nil {
		return tx, err
	}
	s.save(ctx)
	return tx, nil
}

func (s *Session) Sell(ctx context.Context, quantity int64) (sim.Transaction, error) {
	tx, err := s.ledger.ExecuteSell(quantity)
	if err != nil {
		return tx, err
	}
	s.save(ctx)
	return tx, nil
}

// Reset restores the defaults and overwrites the persisted portfolio.
func (s *Session) Reset(ctx context.Context) {
	s.ledger.Reset()
	s.save(ctx)
}

func (s *Session) Snapshot() sim.State { return s.ledger.Snapshot() }

func (s *Session) Status() sim.Status { return s.ledger.Status() }

// broker.Broker

func (s *Session) GetAccount(ctx context.Context) (broker.Account, error) {
	return s.ledger.GetAccount(ctx)
}

func (s *Session) EstimateOrder(ctx context.Context, req broker.MarketOrderRequest) (decimal.Decimal, error) {
	return s.ledger.EstimateOrder(ctx, req)
}

func (s *Session) CreateMarketOrder(ctx context.Context, req broker.MarketOrderRequest) (broker.OrderFill, error) {
	var (
		tx  sim.Transaction
		err error
	)
	switch req.Side {
	case broker.Buy:
		tx, err = s.Buy(ctx, req.Units)
	case broker.Sell:
		tx, err = s.Sell(ctx, req.Units)
	default:
		return broker.OrderFill{}, fmt.Errorf("create market order: unknown side %q", req.Side)
	}
	if err != nil {
		return broker.OrderFill{}, err
	}
	return tx.Fill(), nil
}

var _ broker.Broker = (*Session)(nil)
