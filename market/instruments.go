// market/instruments.go
package market

import "github.com/shopspring/decimal"

// Home is the currency the ledger is kept in.
const Home = "JPY"

type InstrumentMeta struct {
	Symbol   string
	Name     string
	Currency string // currency the ledger values the instrument in
	Band     Band   // plausible normalized price range
}

// FXMeta describes a currency pair used to normalize foreign quotes.
type FXMeta struct {
	Symbol   string // quote service pseudo-symbol
	Base     string
	Quote    string
	Band     Band
	Fallback decimal.Decimal // used whenever the live rate is missing or implausible
}

var Instruments = map[string]InstrumentMeta{
	"^N225": {
		Symbol:   "^N225",
		Name:     "Nikkei 225",
		Currency: Home,
		Band:     NewBand(15_000, 60_000),
	},
}

var FXPairs = map[string]FXMeta{
	"USD_JPY": {
		Symbol:   "JPY=X",
		Base:     "USD",
		Quote:    "JPY",
		Band:     NewBand(100, 200),
		Fallback: decimal.NewFromInt(150),
	},
}

// FXFor returns the pair converting from currency into the home currency.
func FXFor(from string) (FXMeta, bool) {
	for _, meta := range FXPairs {
		if meta.Base == from && meta.Quote == Home {
			return meta, true
		}
	}
	return FXMeta{}, false
}
