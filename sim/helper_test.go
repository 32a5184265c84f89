package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/shopspring/decimal"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testClock advances one second per call.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newLedger(t *testing.T) *Ledger {
	t.Helper()
	l := New(DefaultOptions(), nil)
	c := &testClock{t: t0}
	l.SetClock(c.now)
	return l
}

func setPrice(t *testing.T, l *Ledger, p string) {
	t.Helper()
	if st := l.ApplyPriceUpdate(market.Validated("^N225", dec(p), t0)); st != StatusLive {
		t.Fatalf("apply price %s: status %s", p, st)
	}
}

func failFetch(l *Ledger) Status {
	return l.ApplyPriceUpdate(market.NoUpdate("^N225", errors.New("connection refused")))
}
