package journal

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/rustyeddy/papertrade/sim"
)

var csvHeader = []string{"id", "type", "amount", "price", "total", "timestamp"}

// ExportCSV writes the transactions oldest first. txs is expected
// most-recent-first, as the ledger keeps it.
func ExportCSV(w io.Writer, txs []sim.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := len(txs) - 1; i >= 0; i-- {
		t := txs[i]
		err := cw.Write([]string{
			t.ID,
			string(t.Side),
			strconv.FormatInt(t.Quantity, 10),
			t.UnitPrice.StringFixed(2),
			t.Total.StringFixed(2),
			t.ExecutedAt.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
