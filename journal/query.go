package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/sim"
)

// GetTransaction returns the transaction whose id is id or ends with it, as
// long as the suffix matches exactly one entry. The short ids printed by
// FormatHistory are such suffixes.
func GetTransaction(txs []sim.Transaction, id string) (sim.Transaction, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if id == "" {
		return sim.Transaction{}, fmt.Errorf("transaction id is empty")
	}

	var found []sim.Transaction
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
		if strings.HasSuffix(tx.ID, id) {
			found = append(found, tx)
		}
	}

	switch len(found) {
	case 0:
		return sim.Transaction{}, fmt.Errorf("transaction %q: %w", id, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return sim.Transaction{}, fmt.Errorf("transaction %q is ambiguous (%d matches)", id, len(found))
	}
}

// ListBetween returns the transactions executed within [start, end), keeping
// the most-recent-first order. A zero start or end leaves that side open.
func ListBetween(txs []sim.Transaction, start, end time.Time) []sim.Transaction {
	out := make([]sim.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !start.IsZero() && tx.ExecutedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !tx.ExecutedAt.Before(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// FormatTransaction renders one transaction as a markdown list.
func FormatTransaction(tx sim.Transaction, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %d\n\n", strings.ToUpper(string(tx.Side)), tx.Quantity)
	fmt.Fprintf(&b, "- **ID:** %s\n", tx.ID)
	fmt.Fprintf(&b, "- **Executed:** %s\n", tx.ExecutedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "- **Unit price:** %s\n", tx.UnitPrice.StringFixed(2))
	fmt.Fprintf(&b, "- **Total:** %s\n", market.FormatMoney(tx.Total, currency))
	return b.String()
}
