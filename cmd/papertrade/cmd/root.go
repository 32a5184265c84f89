package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/phuslu/log"
	"github.com/rustyeddy/papertrade/config"
	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/quote"
	"github.com/rustyeddy/papertrade/session"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "Paper-trade the Nikkei 225 with a simulated yen account",
	Long: `Papertrade tracks a simulated cash and share position against the
Nikkei 225 index.

It provides tools for:
  - Polling the index level and validating it before use
  - Previewing, buying and selling whole units at the current price
  - Keeping a bounded transaction history across sessions
  - Exporting the history as CSV

Prices come from a public chart endpoint. No real orders are ever placed.`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
	plain    bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&plain, "plain", false, "print markdown without terminal styling")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// app is one command invocation's wiring.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	store   journal.Store
	session *session.Session
}

// openApp loads the config, opens the store and restores the portfolio.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg.Log.Level, os.Stderr, cfg.Log.Console)

	store, err := journal.Open(cfg.Store.Type, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	client := quote.NewClient(cfg.Feed.BaseURL, cfg.Timeout())
	fx := quote.NewFX(client, cfg.FXPair(), logger)
	adapter := quote.NewAdapter(client, fx, logger, cfg.InstrumentMeta())
	ledger := sim.New(cfg.LedgerOptions(), logger)

	s := session.New(adapter, ledger, store, session.Options{
		Symbol:       cfg.Ledger.Instrument,
		Key:          cfg.Store.Key,
		PollInterval: cfg.PollInterval(),
		MinRefresh:   cfg.MinRefresh(),
	}, logger)
	s.Load(ctx)

	return &app{cfg: cfg, logger: logger, store: store, session: s}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("close store")
	}
}
