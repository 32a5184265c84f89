package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
)

// render writes markdown to w, styled for the terminal unless --plain.
func render(w io.Writer, md string) error {
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

func accountMarkdown(a broker.Account) string {
	var b strings.Builder

	name := a.Instrument
	if meta, ok := market.Instruments[a.Instrument]; ok {
		name = fmt.Sprintf("%s (%s)", meta.Name, a.Instrument)
	}
	fmt.Fprintf(&b, "# %s\n\n", name)

	if a.Price.IsZero() {
		b.WriteString("**Price:** unavailable\n\n")
	} else {
		fmt.Fprintf(&b, "**Price:** %s  %s (%s%%)\n\n",
			market.FormatPrice(a.Price),
			market.FormatDelta(a.Change()),
			market.FormatDelta(a.ChangePercent()))
	}

	updated := "never"
	if !a.LastUpdate.IsZero() {
		updated = a.LastUpdate.Local().Format(time.DateTime)
	}
	fmt.Fprintf(&b, "**Feed:** %s, last update %s\n\n", a.Status, updated)

	b.WriteString("| | |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Cash | %s |\n", market.FormatMoney(a.Cash, a.Currency))
	fmt.Fprintf(&b, "| Shares | %d |\n", a.Shares)
	fmt.Fprintf(&b, "| Market value | %s |\n", market.FormatMoney(a.MarketValue, a.Currency))
	fmt.Fprintf(&b, "| Total equity | %s |\n", market.FormatMoney(a.Equity, a.Currency))
	if a.Price.IsPositive() {
		fmt.Fprintf(&b, "| Max buyable | %d |\n", risk.MaxAffordable(a.Cash, a.Price))
	}
	return b.String()
}
