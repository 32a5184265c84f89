package quote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// chartBody builds a chart document. A nil price omits regularMarketPrice.
func chartBody(price any, currency string, closes ...any) string {
	meta := map[string]any{"symbol": "X"}
	if price != nil {
		meta["regularMarketPrice"] = price
	}
	if currency != "" {
		meta["currency"] = currency
	}
	result := map[string]any{"meta": meta}
	if closes != nil {
		result["indicators"] = map[string]any{
			"quote": []any{map[string]any{"close": closes}},
		}
	}
	doc := map[string]any{
		"chart": map[string]any{
			"result": []any{result},
			"error":  nil,
		},
	}
	b, _ := json.Marshal(doc)
	return string(b)
}

type route struct {
	status int
	body   string
}

// fakeChart serves canned chart documents keyed by symbol.
type fakeChart struct {
	mu     sync.Mutex
	routes map[string]route
	hits   map[string]int
	srv    *httptest.Server
}

func newFakeChart(t *testing.T) *fakeChart {
	t.Helper()
	f := &fakeChart{routes: map[string]route{}, hits: map[string]int{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

		f.mu.Lock()
		f.hits[symbol]++
		rt, ok := f.routes[symbol]
		f.mu.Unlock()

		if !ok {
			http.Error(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rt.status)
		_, _ = w.Write([]byte(rt.body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeChart) set(symbol string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[symbol] = route{status: status, body: body}
}

func (f *fakeChart) count(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[symbol]
}

func (f *fakeChart) client() *Client {
	return NewClient(f.srv.URL+"/v8/finance/chart", 0)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
