package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
)

// FormatHistory renders the transactions as a markdown table, most recent
// first. limit <= 0 shows everything.
func FormatHistory(txs []sim.Transaction, currency string, limit int) string {
	if len(txs) == 0 {
		return "_No transactions yet._\n"
	}
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}

	var b strings.Builder
	b.WriteString("| Time | Side | Quantity | Price | Total | ID |\n")
	b.WriteString("|---|---|---:|---:|---:|---|\n")
	for _, t := range txs {
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %s |\n",
			t.ExecutedAt.Local().Format(time.DateTime),
			strings.ToUpper(string(t.Side)),
			t.Quantity,
			market.FormatPrice(t.UnitPrice),
			market.FormatMoney(t.Total, currency),
			shortID(t.ID),
		)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}
