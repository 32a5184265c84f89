package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phuslu/log"
	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// ErrFeedUnavailable wraps every reason a fetch produced no update: network
// and HTTP failures, malformed documents, and implausible values.
var ErrFeedUnavailable = errors.New("price feed unavailable")

// OutOfBandError reports a value outside its plausibility band.
type OutOfBandError struct {
	Symbol string
	Value  decimal.Decimal
	Band   market.Band
}

func (e *OutOfBandError) Error() string {
	return fmt.Sprintf("%s value %s outside plausible band %s", e.Symbol, e.Value, e.Band)
}

// Adapter turns raw chart quotes into validated home-currency prices.
type Adapter struct {
	client      *Client
	fx          Rater
	instruments map[string]market.InstrumentMeta
	logger      *log.Logger
	now         func() time.Time
}

// NewAdapter builds an adapter for the given instruments. With none it
// serves market.Instruments.
func NewAdapter(client *Client, fx Rater, logger *log.Logger, instruments ...market.InstrumentMeta) *Adapter {
	if logger == nil {
		logger = logging.Discard()
	}
	if fx == nil {
		fx = FixedRate(market.FXPairs["USD_JPY"].Fallback)
	}
	a := &Adapter{
		client:      client,
		fx:          fx,
		instruments: make(map[string]market.InstrumentMeta),
		logger:      logger,
		now:         time.Now,
	}
	if len(instruments) == 0 {
		for _, meta := range market.Instruments {
			instruments = append(instruments, meta)
		}
	}
	for _, meta := range instruments {
		a.instruments[meta.Symbol] = meta
	}
	return a
}

// FetchValidatedPrice fetches symbol and returns either a validated price or
// NoUpdate. It never returns an error and never panics on bad input; the
// NoUpdate reason wraps ErrFeedUnavailable.
func (a *Adapter) FetchValidatedPrice(ctx context.Context, symbol string) market.PriceUpdate {
	p, err := a.fetch(ctx, symbol)
	if err != nil {
		a.logger.Warn().Err(err).Str("symbol", symbol).Msg("price update discarded")
		return market.NoUpdate(symbol, fmt.Errorf("%w: %w", ErrFeedUnavailable, err))
	}
	a.logger.Debug().Str("symbol", symbol).Str("price", p.String()).Msg("price validated")
	return market.Validated(symbol, p, a.now())
}

func (a *Adapter) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	meta, ok := a.instruments[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown instrument %q", symbol)
	}

	q, err := a.client.Chart(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	var rate decimal.Decimal
	if market.NeedsFX(q.Currency) {
		rate = a.fx.Rate(ctx)
	}

	v, conv := market.ToHome(q.Value, q.Currency, rate)
	if conv == market.Assumed {
		a.logger.Warn().
			Str("symbol", symbol).
			Str("currency", q.Currency).
			Msg("unexpected quote currency, treating as " + market.Home)
	}

	if !meta.Band.Contains(v) {
		return decimal.Zero, &OutOfBandError{Symbol: symbol, Value: v, Band: meta.Band}
	}

	return v.Round(2), nil
}
