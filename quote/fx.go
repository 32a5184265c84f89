package quote

import (
	"context"

	"github.com/phuslu/log"
	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

// Rater provides the FX rate used to bring foreign quotes into the home
// currency. Implementations never fail: they fall back to a fixed rate.
type Rater interface {
	Rate(ctx context.Context) decimal.Decimal
}

// FX fetches a live FX rate for one pair and falls back to the pair's fixed
// rate whenever the live value is missing or outside the plausible band.
type FX struct {
	client *Client
	pair   market.FXMeta
	logger *log.Logger
}

func NewFX(client *Client, pair market.FXMeta, logger *log.Logger) *FX {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FX{client: client, pair: pair, logger: logger}
}

func (f *FX) Pair() market.FXMeta { return f.pair }

// Rate returns the live rate, or the fallback rate on any failure.
func (f *FX) Rate(ctx context.Context) decimal.Decimal {
	rate, err := f.Lookup(ctx)
	if err != nil {
		f.logger.Warn().
			Err(err).
			Str("pair", f.pair.Symbol).
			Str("fallback", f.pair.Fallback.String()).
			Msg("fx conversion fallback")
		return f.pair.Fallback
	}
	return rate
}

// Lookup returns the live rate or the reason it cannot be used.
func (f *FX) Lookup(ctx context.Context) (decimal.Decimal, error) {
	q, err := f.client.Chart(ctx, f.pair.Symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !f.pair.Band.Contains(q.Value) {
		return decimal.Zero, &OutOfBandError{Symbol: f.pair.Symbol, Value: q.Value, Band: f.pair.Band}
	}
	f.logger.Debug().Str("pair", f.pair.Symbol).Str("rate", q.Value.String()).Msg("fx rate")
	return q.Value, nil
}

// FixedRate is a Rater that always answers the same rate.
type FixedRate decimal.Decimal

func (r FixedRate) Rate(context.Context) decimal.Decimal { return decimal.Decimal(r) }
