package cmd

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/risk"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview <buy|sell> <quantity>",
	Short: "Show the cost or proceeds of an order without placing it",
	Args:  cobra.ExactArgs(2),
	RunE:  runPreview,
}

var buyCmd = &cobra.Command{
	Use:   "buy <quantity|max>",
	Short: "Buy whole units at the current price",
	Long: `Buy whole units at the current price.

A fresh price is fetched first. If the fetch fails the last stored price is
used, and the order is rejected when no price has ever been seen.

"max" buys as many units as the cash allows, or as --fraction of the total
equity allows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOrder(cmd, broker.Buy, args[0])
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <quantity>",
	Short: "Sell whole units at the current price",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOrder(cmd, broker.Sell, args[0])
	},
}

var (
	orderNoRefresh bool
	buyFraction    float64
)

func init() {
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)

	for _, c := range []*cobra.Command{previewCmd, buyCmd, sellCmd} {
		c.Flags().BoolVar(&orderNoRefresh, "no-refresh", false, "use the stored price instead of fetching one")
	}
	buyCmd.Flags().Float64Var(&buyFraction, "fraction", 0, "with max, commit at most this fraction of equity (0 < f <= 1)")
}

func parseQuantity(s string) (int64, error) {
	q, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("quantity %q is not a whole number", s)
	}
	return q, nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	side, err := broker.ParseSide(args[0])
	if err != nil {
		return err
	}
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !orderNoRefresh {
		a.session.Refresh(ctx)
	}
	amount, err := a.session.Preview(side, qty)
	if err != nil {
		return err
	}

	label := "Cost"
	if side == broker.Sell {
		label = "Proceeds"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s of %s %d: %s\n", label, side, qty, market.FormatMoney(amount, a.cfg.Ledger.Currency))
	return nil
}

func runOrder(cmd *cobra.Command, side broker.Side, arg string) error {
	sizeMax := side == broker.Buy && arg == "max"
	var qty int64
	if !sizeMax {
		var err error
		if qty, err = parseQuantity(arg); err != nil {
			return err
		}
	}
	if buyFraction < 0 || buyFraction > 1 {
		return fmt.Errorf("--fraction must be between 0 and 1")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if !orderNoRefresh {
		a.session.Refresh(ctx)
	}

	if sizeMax {
		acct, err := a.session.GetAccount(ctx)
		if err != nil {
			return err
		}
		size := risk.Calculate(risk.Inputs{
			Cash:     acct.Cash,
			Equity:   acct.Equity,
			Price:    acct.Price,
			Fraction: decimal.NewFromFloat(buyFraction),
		})
		if size.Units == 0 {
			return fmt.Errorf("buy rejected: %s does not cover one unit", market.FormatMoney(size.Budget, a.cfg.Ledger.Currency))
		}
		qty = size.Units
	}
	fill, err := a.session.CreateMarketOrder(ctx, broker.MarketOrderRequest{Side: side, Units: qty})
	if err != nil {
		return fmt.Errorf("%s rejected: %w", side, err)
	}

	cur := a.cfg.Ledger.Currency
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s %d @ %s = %s\n", side, fill.Units, market.FormatPrice(fill.Price), market.FormatMoney(fill.Total, cur))

	acct, err := a.session.GetAccount(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Cash %s, shares %d\n", market.FormatMoney(acct.Cash, cur), acct.Shares)
	return nil
}
