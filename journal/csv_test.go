package journal

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	st := tradedState(t)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, st.Transactions))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"id", "type", "amount", "price", "total", "timestamp"}, rows[0])
	assert.Equal(t, "buy", rows[1][1], "oldest first")
	assert.Equal(t, "3", rows[1][2])
	assert.Equal(t, "39000.12", rows[1][3])
	assert.Equal(t, "117000.36", rows[1][4])
	assert.Equal(t, "sell", rows[2][1])
	assert.Equal(t, st.Transactions[0].ID, rows[2][0])
}

func TestExportCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, nil))
	assert.Equal(t, "id,type,amount,price,total,timestamp\n", buf.String())
}

func TestFormatHistory(t *testing.T) {
	st := tradedState(t)

	out := FormatHistory(st.Transactions, "JPY", 0)
	assert.Contains(t, out, "| Time | Side |")
	assert.Contains(t, out, "| SELL | 1 | 39500.50 | ¥39,501 |")
	assert.Contains(t, out, "| BUY | 3 | 39000.12 | ¥117,000 |")

	limited := FormatHistory(st.Transactions, "JPY", 1)
	assert.NotContains(t, limited, "BUY")

	assert.Contains(t, FormatHistory(nil, "JPY", 0), "No transactions")
}
