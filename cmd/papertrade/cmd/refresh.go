package cmd

import (
	"fmt"

	"github.com/rustyeddy/papertrade/market"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch and apply the latest price",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	u, st, err := a.session.RefreshNow(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !u.OK() {
		fmt.Fprintf(out, "✗ No update (%s): %v\n", st, u.Reason)
		return nil
	}
	fmt.Fprintf(out, "✓ %s %s (%s)\n", u.Symbol, market.FormatPrice(u.Price), st)
	return nil
}
