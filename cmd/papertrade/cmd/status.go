package cmd

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the portfolio",
	Long: `Show cash, shares, the current price and the valuation of the portfolio.

The price shown is the last one stored. Use --refresh to fetch a new one first.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

var statusRefresh bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVarP(&statusRefresh, "refresh", "r", false, "fetch a fresh price before showing")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if statusRefresh {
		a.session.Refresh(ctx)
	}
	acct, err := a.session.GetAccount(ctx)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), accountMarkdown(acct))
}
