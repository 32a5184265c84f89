package quote

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/market"
	"github.com/stretchr/testify/assert"
)

func TestFXRate(t *testing.T) {
	pair := market.FXPairs["USD_JPY"]

	tests := []struct {
		name     string
		status   int
		body     string
		want     string
		fallback bool
	}{
		{"live rate", http.StatusOK, chartBody(151.25, "JPY"), "151.25", false},
		{"close fallback", http.StatusOK, chartBody(nil, "JPY", 149.0, 150.5), "150.5", false},
		{"below band", http.StatusOK, chartBody(1.51, "JPY"), "150", true},
		{"above band", http.StatusOK, chartBody(250.0, "JPY"), "150", true},
		{"missing value", http.StatusOK, chartBody(nil, "JPY"), "150", true},
		{"http failure", http.StatusBadGateway, "", "150", true},
		{"malformed", http.StatusOK, "<html>", "150", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeChart(t)
			f.set(pair.Symbol, tt.status, tt.body)

			var buf bytes.Buffer
			fx := NewFX(f.client(), pair, logging.New("warn", &buf, false))

			got := fx.Rate(context.Background())
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
			if tt.fallback {
				assert.Contains(t, buf.String(), "fx conversion fallback")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestFXCustomFallback(t *testing.T) {
	f := newFakeChart(t)
	pair := market.FXPairs["USD_JPY"]
	pair.Fallback = dec("140")

	fx := NewFX(f.client(), pair, nil)
	assert.True(t, fx.Rate(context.Background()).Equal(dec("140")))
}
