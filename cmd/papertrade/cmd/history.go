package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List executed orders, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var transactionCmd = &cobra.Command{
	Use:   "transaction <id>",
	Short: "Show one transaction by id or by the short id from history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTransaction,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the transaction history as CSV",
	Long: `Write the transaction history as CSV, oldest first.

Examples:
  papertrade export > trades.csv
  papertrade export -o trades.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	historyLimit int
	historySince string
	historyUntil string
	exportOutput string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(transactionCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n transactions (0 for all)")
	historyCmd.Flags().StringVar(&historySince, "since", "", "only transactions on or after this day (YYYY-MM-DD)")
	historyCmd.Flags().StringVar(&historyUntil, "until", "", "only transactions before this day (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

// parseDay reads a YYYY-MM-DD day in local time. Empty means unbounded.
func parseDay(flag, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, s)
	}
	return d, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	since, err := parseDay("since", historySince)
	if err != nil {
		return err
	}
	until, err := parseDay("until", historyUntil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	txs := journal.ListBetween(a.session.Snapshot().Transactions, since, until)
	md := "# Transactions\n\n" + journal.FormatHistory(txs, a.cfg.Ledger.Currency, historyLimit)
	return render(cmd.OutOrStdout(), md)
}

func runTransaction(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	tx, err := journal.GetTransaction(a.session.Snapshot().Transactions, args[0])
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), journal.FormatTransaction(tx, a.cfg.Ledger.Currency))
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	txs := a.session.Snapshot().Transactions
	if exportOutput == "" {
		return journal.ExportCSV(cmd.OutOrStdout(), txs)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create %s: %w", exportOutput, err)
	}
	if err := journal.ExportCSV(f, txs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %d transactions to %s\n", len(txs), exportOutput)
	return nil
}
