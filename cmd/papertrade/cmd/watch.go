package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/session"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the price until interrupted",
	Long: `Fetch the price every feed.poll_interval and print the portfolio after
each fetch. Press Enter to refresh right away (at most once per
feed.min_refresh). Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	show := func(acct broker.Account) {
		mu.Lock()
		defer mu.Unlock()
		if err := render(out, accountMarkdown(acct)); err != nil {
			a.logger.Warn().Err(err).Msg("render")
		}
	}

	go func() {
		err := a.session.RefreshOnInput(ctx, cmd.InOrStdin(), func(u market.PriceUpdate, st sim.Status, err error) {
			if errors.Is(err, session.ErrThrottled) {
				mu.Lock()
				fmt.Fprintln(out, "… refresh throttled, try again shortly")
				mu.Unlock()
				return
			}
			acct, _ := a.session.GetAccount(ctx)
			show(acct)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("manual refresh input")
		}
	}()

	err = a.session.Run(ctx, show)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
