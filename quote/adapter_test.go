package quote

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fetchedAt = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newTestAdapter(f *fakeChart, rater Rater) *Adapter {
	a := NewAdapter(f.client(), rater, logging.Discard())
	a.now = func() time.Time { return fetchedAt }
	return a
}

func TestFetchValidatedPriceHomeCurrency(t *testing.T) {
	f := newFakeChart(t)
	f.set("^N225", http.StatusOK, chartBody(39123.456, "JPY"))

	u := newTestAdapter(f, FixedRate(dec("150"))).FetchValidatedPrice(context.Background(), "^N225")

	require.True(t, u.OK(), "reason: %v", u.Reason)
	assert.Equal(t, "39123.46", u.Price.String())
	assert.Equal(t, fetchedAt, u.Time)
	assert.Equal(t, 0, f.count("JPY=X"), "home currency quotes must not fetch fx")
}

func TestFetchValidatedPriceConvertsUSD(t *testing.T) {
	f := newFakeChart(t)
	f.set("^N225", http.StatusOK, chartBody(260.0, "USD"))
	f.set("JPY=X", http.StatusOK, chartBody(149.5, "JPY"))

	fx := NewFX(f.client(), market.FXPairs["USD_JPY"], logging.Discard())
	u := newTestAdapter(f, fx).FetchValidatedPrice(context.Background(), "^N225")

	require.True(t, u.OK(), "reason: %v", u.Reason)
	assert.True(t, u.Price.Equal(dec("38870")), "got %s", u.Price)
	assert.Equal(t, 1, f.count("JPY=X"))
}

func TestFetchValidatedPriceUnknownCurrencyIsAssumedHome(t *testing.T) {
	f := newFakeChart(t)
	f.set("^N225", http.StatusOK, chartBody(39000.0, "EUR"))

	var buf bytes.Buffer
	a := NewAdapter(f.client(), FixedRate(dec("150")), logging.New("warn", &buf, false))

	u := a.FetchValidatedPrice(context.Background(), "^N225")
	require.True(t, u.OK())
	assert.True(t, u.Price.Equal(dec("39000")))
	assert.Contains(t, buf.String(), "unexpected quote currency")
}

func TestFetchValidatedPriceRejectsOutOfBand(t *testing.T) {
	f := newFakeChart(t)
	f.set("^N225", http.StatusOK, chartBody(70000.0, "JPY"))

	u := newTestAdapter(f, FixedRate(dec("150"))).FetchValidatedPrice(context.Background(), "^N225")

	require.False(t, u.OK())
	assert.ErrorIs(t, u.Reason, ErrFeedUnavailable)
	var oob *OutOfBandError
	require.True(t, errors.As(u.Reason, &oob))
	assert.True(t, oob.Value.Equal(dec("70000")))
}

func TestFetchValidatedPriceRejectsUnconvertedUSD(t *testing.T) {
	// A USD quote converted with an absurd rate lands outside the band.
	f := newFakeChart(t)
	f.set("^N225", http.StatusOK, chartBody(260.0, "USD"))

	u := newTestAdapter(f, FixedRate(dec("1"))).FetchValidatedPrice(context.Background(), "^N225")
	assert.False(t, u.OK())
}

func TestFetchValidatedPriceFailuresAreNoUpdate(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http 500", http.StatusInternalServerError, "oops"},
		{"malformed", http.StatusOK, "]["},
		{"missing numeric", http.StatusOK, chartBody(nil, "JPY")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeChart(t)
			f.set("^N225", tt.status, tt.body)

			u := newTestAdapter(f, nil).FetchValidatedPrice(context.Background(), "^N225")
			assert.False(t, u.OK())
			assert.ErrorIs(t, u.Reason, ErrFeedUnavailable)
			assert.True(t, u.Price.IsZero())
		})
	}
}

func TestFetchValidatedPriceUnknownInstrument(t *testing.T) {
	f := newFakeChart(t)
	u := newTestAdapter(f, nil).FetchValidatedPrice(context.Background(), "^GSPC")
	assert.False(t, u.OK())
	assert.Equal(t, 0, f.count("^GSPC"))
}

func TestFetchValidatedPriceCustomBand(t *testing.T) {
	f := newFakeChart(t)
	f.set("^N225", http.StatusOK, chartBody(70000.0, "JPY"))

	meta := market.Instruments["^N225"]
	meta.Band = market.NewBand(15_000, 80_000)

	a := NewAdapter(f.client(), nil, nil, meta)
	u := a.FetchValidatedPrice(context.Background(), "^N225")
	require.True(t, u.OK())
	assert.True(t, u.Price.Equal(dec("70000")))
}
