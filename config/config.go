// Package config loads papertrade settings from a YAML, JSON or TOML file
// and applies PAPERTRADE_* environment overrides on top.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/quote"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// PAPERTRADE_LEDGER_INITIAL_CASH or PAPERTRADE_STORE_PATH. Leaf fields carry
// no envconfig tag: a tagged field would also read the bare name ($PATH).
const EnvPrefix = "PAPERTRADE"

// Config represents the complete papertrade configuration
type Config struct {
	Ledger LedgerConfig `json:"ledger" yaml:"ledger" toml:"ledger"`
	Feed   FeedConfig   `json:"feed" yaml:"feed" toml:"feed"`
	Store  StoreConfig  `json:"store" yaml:"store" toml:"store"`
	Log    LogConfig    `json:"log" yaml:"log" toml:"log"`
}

// LedgerConfig contains portfolio initialization parameters
type LedgerConfig struct {
	Instrument  string  `json:"instrument" yaml:"instrument" toml:"instrument" split_words:"true"`
	Currency    string  `json:"currency" yaml:"currency" toml:"currency" split_words:"true"`
	InitialCash int64   `json:"initial_cash" yaml:"initial_cash" toml:"initial_cash" split_words:"true"`
	SeedPrice   float64 `json:"seed_price" yaml:"seed_price" toml:"seed_price" split_words:"true"` // 0 disables seeding
	MaxHistory  int     `json:"max_history" yaml:"max_history" toml:"max_history" split_words:"true"`
}

// FeedConfig contains quote endpoint and polling parameters
type FeedConfig struct {
	BaseURL      string  `json:"base_url" yaml:"base_url" toml:"base_url" split_words:"true"`
	Timeout      string  `json:"timeout" yaml:"timeout" toml:"timeout" split_words:"true"`                   // e.g. "10s"
	PollInterval string  `json:"poll_interval" yaml:"poll_interval" toml:"poll_interval" split_words:"true"` // e.g. "60s"
	MinRefresh   string  `json:"min_refresh" yaml:"min_refresh" toml:"min_refresh" split_words:"true"`     // spacing of manual refreshes
	BandMin      float64 `json:"band_min" yaml:"band_min" toml:"band_min" split_words:"true"`
	BandMax      float64 `json:"band_max" yaml:"band_max" toml:"band_max" split_words:"true"`
	FXSymbol     string  `json:"fx_symbol" yaml:"fx_symbol" toml:"fx_symbol" split_words:"true"`
	FXBandMin    float64 `json:"fx_band_min" yaml:"fx_band_min" toml:"fx_band_min" split_words:"true"`
	FXBandMax    float64 `json:"fx_band_max" yaml:"fx_band_max" toml:"fx_band_max" split_words:"true"`
	FXFallback   float64 `json:"fx_fallback" yaml:"fx_fallback" toml:"fx_fallback" split_words:"true"`
}

// StoreConfig selects where the portfolio is persisted
type StoreConfig struct {
	Type string `json:"type" yaml:"type" toml:"type" split_words:"true"` // "file", "sqlite" or "memory"
	Path string `json:"path,omitempty" yaml:"path,omitempty" toml:"path,omitempty" split_words:"true"`
	Key  string `json:"key" yaml:"key" toml:"key" split_words:"true"`
}

type LogConfig struct {
	Level   string `json:"level" yaml:"level" toml:"level" split_words:"true"`
	Console bool   `json:"console" yaml:"console" toml:"console" split_words:"true"`
}

// Load returns the defaults, overlaid with the file at path (if any) and
// then with the environment. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML, JSON or TOML based on
// extension) without environment overrides.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch format(path) {
	case "toml":
		err = toml.Unmarshal(data, c)
	case "json":
		err = json.Unmarshal(data, c)
	case "yaml":
		err = yaml.Unmarshal(data, c)
	default:
		// Try YAML first, fall back to JSON
		if err = yaml.Unmarshal(data, c); err != nil {
			err = json.Unmarshal(data, c)
		}
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv reads a .env file from the working directory when present and
// applies PAPERTRADE_* variables over the current values.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a file (YAML, JSON or TOML based on
// extension; JSON when the extension is unknown)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch format(path) {
	case "yaml":
		data, err = yaml.Marshal(c)
	case "toml":
		data, err = toml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	case ".toml":
		return "toml"
	default:
		return ""
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Ledger.Instrument == "" {
		return fmt.Errorf("ledger.instrument is required")
	}
	if _, ok := market.Instruments[c.Ledger.Instrument]; !ok {
		return fmt.Errorf("unknown instrument: %s", c.Ledger.Instrument)
	}
	if c.Ledger.Currency != market.Home {
		return fmt.Errorf("ledger.currency must be %s", market.Home)
	}
	if c.Ledger.InitialCash <= 0 {
		return fmt.Errorf("ledger.initial_cash must be positive")
	}
	if c.Ledger.SeedPrice < 0 {
		return fmt.Errorf("ledger.seed_price must not be negative")
	}
	if c.Ledger.MaxHistory <= 0 {
		return fmt.Errorf("ledger.max_history must be positive")
	}

	for name, v := range map[string]string{
		"feed.timeout":       c.Feed.Timeout,
		"feed.poll_interval": c.Feed.PollInterval,
		"feed.min_refresh":   c.Feed.MinRefresh,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Feed.BandMin <= 0 || c.Feed.BandMax <= c.Feed.BandMin {
		return fmt.Errorf("feed.band_max must be greater than a positive feed.band_min")
	}
	if c.Feed.FXSymbol == "" {
		return fmt.Errorf("feed.fx_symbol is required")
	}
	if c.Feed.FXBandMin <= 0 || c.Feed.FXBandMax <= c.Feed.FXBandMin {
		return fmt.Errorf("feed.fx_band_max must be greater than a positive feed.fx_band_min")
	}
	if c.Feed.FXFallback < c.Feed.FXBandMin || c.Feed.FXFallback > c.Feed.FXBandMax {
		return fmt.Errorf("feed.fx_fallback must lie within the fx band")
	}

	switch c.Store.Type {
	case "file", "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path required for %s store", c.Store.Type)
		}
	case "memory":
	default:
		return fmt.Errorf("store.type must be 'file', 'sqlite' or 'memory'")
	}
	if c.Store.Key == "" {
		return fmt.Errorf("store.key is required")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	fx := market.FXPairs["USD_JPY"]
	return &Config{
		Ledger: LedgerConfig{
			Instrument:  "^N225",
			Currency:    market.Home,
			InitialCash: sim.DefaultInitialCash.IntPart(),
			SeedPrice:   sim.DefaultSeedPrice.InexactFloat64(),
			MaxHistory:  sim.DefaultMaxHistory,
		},
		Feed: FeedConfig{
			BaseURL:      quote.DefaultBaseURL,
			Timeout:      "10s",
			PollInterval: "60s",
			MinRefresh:   "5s",
			BandMin:      15000,
			BandMax:      60000,
			FXSymbol:     fx.Symbol,
			FXBandMin:    fx.Band.Min.InexactFloat64(),
			FXBandMax:    fx.Band.Max.InexactFloat64(),
			FXFallback:   fx.Fallback.InexactFloat64(),
		},
		Store: StoreConfig{
			Type: "file",
			Path: "./.papertrade",
			Key:  "papertrade.portfolio",
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// LedgerOptions converts the ledger section for sim.New.
func (c *Config) LedgerOptions() sim.Options {
	return sim.Options{
		Instrument:  c.Ledger.Instrument,
		Currency:    c.Ledger.Currency,
		InitialCash: decimal.NewFromInt(c.Ledger.InitialCash),
		SeedPrice:   decimal.NewFromFloat(c.Ledger.SeedPrice),
		MaxHistory:  c.Ledger.MaxHistory,
	}
}

// InstrumentMeta returns the configured instrument with the configured band.
func (c *Config) InstrumentMeta() market.InstrumentMeta {
	meta := market.Instruments[c.Ledger.Instrument]
	meta.Band = market.Band{
		Min: decimal.NewFromFloat(c.Feed.BandMin),
		Max: decimal.NewFromFloat(c.Feed.BandMax),
	}
	return meta
}

// FXPair returns the USD to home currency pair with the configured symbol,
// band and fallback.
func (c *Config) FXPair() market.FXMeta {
	meta := market.FXPairs["USD_JPY"]
	meta.Symbol = c.Feed.FXSymbol
	meta.Band = market.Band{
		Min: decimal.NewFromFloat(c.Feed.FXBandMin),
		Max: decimal.NewFromFloat(c.Feed.FXBandMax),
	}
	meta.Fallback = decimal.NewFromFloat(c.Feed.FXFallback)
	return meta
}

// Timeout returns the HTTP timeout. Call Validate first.
func (c *Config) Timeout() time.Duration {
	d, _ := time.ParseDuration(c.Feed.Timeout)
	return d
}

// PollInterval returns the watch loop period. Call Validate first.
func (c *Config) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Feed.PollInterval)
	return d
}

// MinRefresh returns the minimum spacing of manual refreshes. Call Validate
// first.
func (c *Config) MinRefresh() time.Duration {
	d, _ := time.ParseDuration(c.Feed.MinRefresh)
	return d
}
