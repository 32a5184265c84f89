package broker

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSide(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{"buy", Buy, false},
		{"SELL", Sell, false},
		{" Buy ", Buy, false},
		{"short", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseSide(tt.in)
		if tt.wantErr {
			require.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestAccountChange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		price    string
		previous string
		change   string
		percent  string
	}{
		{"up", "39390", "39000", "390", "1"},
		{"down", "38610", "39000", "-390", "-1"},
		{"flat", "39000", "39000", "0", "0"},
		{"no previous", "39000", "0", "39000", "0"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := Account{
				Price:         decimal.RequireFromString(tt.price),
				PreviousPrice: decimal.RequireFromString(tt.previous),
			}
			assert.True(t, a.Change().Equal(decimal.RequireFromString(tt.change)), "change %s", a.Change())
			assert.True(t, a.ChangePercent().Equal(decimal.RequireFromString(tt.percent)), "percent %s", a.ChangePercent())
		})
	}
}
