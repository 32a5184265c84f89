package journal

import (
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryFixture() []sim.Transaction {
	mk := func(id string, side broker.Side, at time.Time) sim.Transaction {
		return sim.Transaction{ID: id, Side: side, Quantity: 1, UnitPrice: dec("39000"), Total: dec("39000"), ExecutedAt: at}
	}
	// most recent first
	return []sim.Transaction{
		mk("01HRZ00000000000000000AAAA", broker.Sell, t0.Add(48*time.Hour)),
		mk("01HRZ00000000000000000BBBB", broker.Buy, t0.Add(24*time.Hour)),
		mk("01HRZ00000000000000001BBBB", broker.Buy, t0),
	}
}

func TestGetTransaction(t *testing.T) {
	t.Parallel()
	txs := queryFixture()

	tx, err := GetTransaction(txs, "01HRZ00000000000000000AAAA")
	require.NoError(t, err)
	assert.Equal(t, broker.Sell, tx.Side)

	tx, err = GetTransaction(txs, "0000aaaa")
	require.NoError(t, err, "short ids are case-insensitive suffixes")
	assert.Equal(t, "01HRZ00000000000000000AAAA", tx.ID)

	tx, err = GetTransaction(txs, "0BBBB")
	require.NoError(t, err)
	assert.True(t, tx.ExecutedAt.Equal(t0.Add(24*time.Hour)))
}

func TestGetTransactionErrors(t *testing.T) {
	t.Parallel()
	txs := queryFixture()

	_, err := GetTransaction(txs, "ZZZZ")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")

	_, err = GetTransaction(txs, "BBBB")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = GetTransaction(txs, " ")
	assert.Error(t, err)
}

func TestListBetween(t *testing.T) {
	t.Parallel()
	txs := queryFixture()

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"open", time.Time{}, time.Time{}, 3},
		{"since", t0.Add(time.Hour), time.Time{}, 2},
		{"until is exclusive", time.Time{}, t0.Add(24 * time.Hour), 1},
		{"window", t0.Add(24 * time.Hour), t0.Add(25 * time.Hour), 1},
		{"empty window", t0.Add(time.Hour), t0.Add(2 * time.Hour), 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ListBetween(txs, tt.start, tt.end)
			assert.Len(t, got, tt.want)
			for i := 1; i < len(got); i++ {
				assert.True(t, got[i-1].ExecutedAt.After(got[i].ExecutedAt), "order kept")
			}
		})
	}
}

func TestFormatTransaction(t *testing.T) {
	t.Parallel()
	out := FormatTransaction(queryFixture()[0], "JPY")
	assert.Contains(t, out, "# SELL 1")
	assert.Contains(t, out, "01HRZ00000000000000000AAAA")
	assert.Contains(t, out, "**Total:** ¥39,000")
}
