package cmd

import (
	"errors"
	"fmt"

	"github.com/rustyeddy/papertrade/market"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the portfolio and start over",
	Long: `Discard all shares and history and restore the initial cash.

This cannot be undone, so --yes is required.`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetYes bool

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "confirm the reset")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return errors.New("reset discards the portfolio; run again with --yes to confirm")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	a.session.Reset(ctx)
	cash := a.session.Snapshot().Cash
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Portfolio reset to %s\n", market.FormatMoney(cash, a.cfg.Ledger.Currency))
	return nil
}
