// Package quote fetches index and FX quotes from a chart-data endpoint and
// turns them into validated, home-currency prices for the ledger.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseURL is the chart endpoint family both the index and the FX
	// pair are fetched from.
	DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	pathRegularPrice = "$.chart.result[0].meta.regularMarketPrice"
	pathCloses       = "$.chart.result[0].indicators.quote[0].close"
	pathCurrency     = "$.chart.result[0].meta.currency"
	pathError        = "$.chart.error.description"
)

// Source tells which field of the chart response a quote was read from.
type Source string

const (
	SourceRegularPrice Source = "regularMarketPrice"
	SourceLastClose    Source = "close"
)

// ErrNoPrice is returned when the response carries neither a regular market
// price nor a usable close.
var ErrNoPrice = errors.New("no numeric price in response")

// Quote is a raw, unvalidated quote as reported by the service.
type Quote struct {
	Symbol   string
	Value    decimal.Decimal
	Currency string // empty when the service did not report one
	Source   Source
}

type Client struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: "papertrade/1.0",
		HTTP:      &http.Client{Timeout: timeout},
	}
}

// Chart requests the chart document for symbol and extracts its latest quote.
func (c *Client) Chart(ctx context.Context, symbol string) (Quote, error) {
	if symbol == "" {
		return Quote{}, fmt.Errorf("quote: missing symbol")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return Quote{}, err
	}
	u = u.JoinPath(symbol)
	q := u.Query()
	q.Set("interval", "1d")
	q.Set("range", "5d")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		return Quote{}, fmt.Errorf("quote %s http %d: %s", symbol, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var doc any
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&doc); err != nil {
		return Quote{}, fmt.Errorf("quote %s: bad json: %w", symbol, err)
	}
	return parseChart(symbol, doc)
}

// parseChart extracts a quote from a decoded chart document. Every field is
// optional: the regular market price is preferred, the most recent non-null
// close is the fallback.
func parseChart(symbol string, doc any) (Quote, error) {
	if desc, ok := lookupString(doc, pathError); ok && desc != "" {
		return Quote{}, fmt.Errorf("quote %s: service error: %s", symbol, desc)
	}

	qt := Quote{Symbol: symbol}
	qt.Currency, _ = lookupString(doc, pathCurrency)

	if v, ok := lookupNumber(doc, pathRegularPrice); ok {
		qt.Value = v
		qt.Source = SourceRegularPrice
		return qt, nil
	}

	if v, ok := lastClose(doc); ok {
		qt.Value = v
		qt.Source = SourceLastClose
		return qt, nil
	}

	return Quote{}, fmt.Errorf("quote %s: %w", symbol, ErrNoPrice)
}

func lookup(doc any, path string) (any, bool) {
	v, err := jsonpath.Get(path, doc)
	if err != nil || v == nil {
		return nil, false
	}
	// jsonpath may wrap a single answer in a list; keep the first one.
	if list, ok := v.([]any); ok && path != pathCloses {
		if len(list) == 0 {
			return nil, false
		}
		v = list[0]
	}
	return v, v != nil
}

func lookupString(doc any, path string) (string, bool) {
	v, ok := lookup(doc, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func lookupNumber(doc any, path string) (decimal.Decimal, bool) {
	v, ok := lookup(doc, path)
	if !ok {
		return decimal.Zero, false
	}
	return toDecimal(v)
}

func lastClose(doc any) (decimal.Decimal, bool) {
	v, ok := lookup(doc, pathCloses)
	if !ok {
		return decimal.Zero, false
	}
	closes, ok := v.([]any)
	if !ok {
		return decimal.Zero, false
	}
	for i := len(closes) - 1; i >= 0; i-- {
		if d, ok := toDecimal(closes[i]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		// some mirrors of the endpoint quote numbers as strings
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
