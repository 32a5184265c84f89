package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// scriptedFeed answers with queued prices; an empty string is a failed fetch.
// Once the queue is drained the last answer repeats.
type scriptedFeed struct {
	mu     sync.Mutex
	prices []string
	calls  int
}

func (f *scriptedFeed) FetchValidatedPrice(_ context.Context, symbol string) market.PriceUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := ""
	if len(f.prices) > 0 {
		i := min(f.calls, len(f.prices)-1)
		p = f.prices[i]
	}
	f.calls++
	if p == "" {
		return market.NoUpdate(symbol, errors.New("connection refused"))
	}
	return market.Validated(symbol, dec(p), t0)
}

func (f *scriptedFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// brokenStore fails every write.
type brokenStore struct{ journal.MemoryStore }

func (*brokenStore) Put(context.Context, string, string) error {
	return errors.New("disk full")
}

func newSession(t *testing.T, feed Feed, store journal.Store) *Session {
	t.Helper()
	l := sim.New(sim.DefaultOptions(), nil)
	return New(feed, l, store, Options{MinRefresh: time.Hour}, nil)
}
