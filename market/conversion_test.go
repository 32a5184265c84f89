package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestToHome(t *testing.T) {
	rate := d("150")

	tests := []struct {
		name     string
		currency string
		in       string
		want     string
		conv     Conversion
	}{
		{"home currency", "JPY", "38000.5", "38000.5", AsIs},
		{"usd converted", "USD", "250", "37500", Converted},
		{"unknown currency assumed home", "EUR", "39000", "39000", Assumed},
		{"empty currency assumed home", "", "39000", "39000", Assumed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, conv := ToHome(d(tt.in), tt.currency, rate)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
			assert.Equal(t, tt.conv, conv)
		})
	}
}

func TestFXFor(t *testing.T) {
	meta, ok := FXFor("USD")
	require.True(t, ok)
	assert.Equal(t, "JPY=X", meta.Symbol)
	assert.True(t, meta.Fallback.Equal(d("150")))

	_, ok = FXFor("EUR")
	assert.False(t, ok)
}

func TestBandContainsIsInclusive(t *testing.T) {
	b := Instruments["^N225"].Band

	assert.True(t, b.Contains(d("15000")))
	assert.True(t, b.Contains(d("60000")))
	assert.True(t, b.Contains(d("39000.12")))
	assert.False(t, b.Contains(d("14999.99")))
	assert.False(t, b.Contains(d("70000")))
}

func TestPriceUpdate(t *testing.T) {
	u := NoUpdate("^N225", nil)
	assert.False(t, u.OK())
	assert.Contains(t, u.String(), "no update")

	v := Validated("^N225", d("39000.1"), fixedTime)
	assert.True(t, v.OK())
	assert.Equal(t, "^N225: 39000.10", v.String())
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "¥1,000,000", FormatMoney(d("1000000"), "JPY"))
	assert.Equal(t, "¥882,999", FormatMoney(d("882999.40"), "JPY"))
	assert.Equal(t, "$1,234.57", FormatMoney(d("1234.567"), "USD"))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+120.50", FormatDelta(d("120.5")))
	assert.Equal(t, "-3.00", FormatDelta(d("-3")))
	assert.Equal(t, "0.00", FormatDelta(decimal.Zero))
}
