package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/rustyeddy/papertrade/broker"
	"github.com/rustyeddy/papertrade/internal/id"
	"github.com/rustyeddy/papertrade/internal/logging"
	"github.com/rustyeddy/papertrade/sim"
	"github.com/shopspring/decimal"
)

// blob is the persisted shape of sim.State. Numbers are written with full
// decimal precision.
type blob struct {
	CashBalance        json.Number `json:"cashBalance"`
	Shares             int64       `json:"shares"`
	TransactionHistory []blobTx    `json:"transactionHistory"`
	CurrentPrice       json.Number `json:"currentPrice"`
	PreviousPrice      json.Number `json:"previousPrice"`
	LastUpdate         *string     `json:"lastUpdate"`
}

type blobTx struct {
	ID        string      `json:"id,omitempty"`
	Type      string      `json:"type"`
	Amount    int64       `json:"amount"`
	Price     json.Number `json:"price"`
	Total     json.Number `json:"total"`
	Timestamp string      `json:"timestamp"`
}

const timeLayout = time.RFC3339Nano

// Save writes st under key.
func Save(ctx context.Context, s Store, key string, st sim.State) error {
	b, err := EncodeState(st)
	if err != nil {
		return err
	}
	if err := s.Put(ctx, key, string(b)); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Load reads the state stored under key. A missing key yields defaults and
// no error. A blob that cannot be read or decoded yields defaults and an
// error for the caller to log; individual bad fields fall back to their
// default values.
func Load(ctx context.Context, s Store, key string, defaults sim.State, logger *log.Logger) (sim.State, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return defaults.Clone(), nil
	}
	if err != nil {
		return defaults.Clone(), fmt.Errorf("load %s: %w", key, err)
	}
	return DecodeState([]byte(raw), defaults, logger)
}

func EncodeState(st sim.State) ([]byte, error) {
	b := blob{
		CashBalance:        json.Number(st.Cash.String()),
		Shares:             st.Shares,
		TransactionHistory: make([]blobTx, 0, len(st.Transactions)),
		CurrentPrice:       json.Number(st.Price.String()),
		PreviousPrice:      json.Number(st.PreviousPrice.String()),
	}
	if !st.LastUpdate.IsZero() {
		s := st.LastUpdate.UTC().Format(timeLayout)
		b.LastUpdate = &s
	}
	for _, tx := range st.Transactions {
		b.TransactionHistory = append(b.TransactionHistory, blobTx{
			ID:        tx.ID,
			Type:      string(tx.Side),
			Amount:    tx.Quantity,
			Price:     json.Number(tx.UnitPrice.String()),
			Total:     json.Number(tx.Total.String()),
			Timestamp: tx.ExecutedAt.UTC().Format(timeLayout),
		})
	}
	return json.Marshal(b)
}

// DecodeState decodes a blob field by field. Only a blob that is not a JSON
// object at all is rejected with ErrCorrupt.
func DecodeState(data []byte, defaults sim.State, logger *log.Logger) (sim.State, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	st := defaults.Clone()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		if err == nil {
			err = errors.New("not an object")
		}
		return st, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	d := decoder{obj: obj, logger: logger}
	st.Cash = d.amount("cashBalance", defaults.Cash)
	st.Shares = d.count("shares", defaults.Shares)
	st.Price = d.amount("currentPrice", defaults.Price)
	st.PreviousPrice = d.amount("previousPrice", defaults.PreviousPrice)
	st.LastUpdate = d.timestamp("lastUpdate", defaults.LastUpdate)
	st.Transactions = d.transactions("transactionHistory", defaults.Transactions)
	return st, nil
}

type decoder struct {
	obj    map[string]any
	logger *log.Logger
}

func (d decoder) fallback(field string, v any, why string) {
	d.logger.Warn().Str("field", field).Str("value", fmt.Sprint(v)).Msg("persisted field " + why + ", using default")
}

func (d decoder) amount(field string, def decimal.Decimal) decimal.Decimal {
	v, ok := d.obj[field]
	if !ok || v == nil {
		return def
	}
	n, ok := toDecimal(v)
	if !ok || n.IsNegative() {
		d.fallback(field, v, "is not a non-negative number")
		return def
	}
	return n
}

func (d decoder) count(field string, def int64) int64 {
	v, ok := d.obj[field]
	if !ok || v == nil {
		return def
	}
	n, ok := toCount(v)
	if !ok {
		d.fallback(field, v, "is not a non-negative integer")
		return def
	}
	return n
}

func (d decoder) timestamp(field string, def time.Time) time.Time {
	v, ok := d.obj[field]
	if !ok || v == nil {
		return def
	}
	t, ok := toTime(v)
	if !ok {
		d.fallback(field, v, "is not a timestamp")
		return def
	}
	return t
}

func (d decoder) transactions(field string, def []sim.Transaction) []sim.Transaction {
	v, ok := d.obj[field]
	if !ok || v == nil {
		return def
	}
	list, ok := v.([]any)
	if !ok {
		d.fallback(field, v, "is not a list")
		return def
	}

	out := make([]sim.Transaction, 0, len(list))
	for i, item := range list {
		tx, err := toTransaction(item)
		if err != nil {
			d.logger.Warn().Int("index", i).Err(err).Msg("skipping persisted transaction")
			continue
		}
		out = append(out, tx)
	}
	if len(out) > sim.DefaultMaxHistory {
		out = out[:sim.DefaultMaxHistory]
	}
	return out
}

func toTransaction(v any) (sim.Transaction, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return sim.Transaction{}, errors.New("not an object")
	}

	typ, _ := obj["type"].(string)
	side, err := broker.ParseSide(typ)
	if err != nil {
		return sim.Transaction{}, err
	}
	qty, ok := toCount(obj["amount"])
	if !ok || qty <= 0 {
		return sim.Transaction{}, fmt.Errorf("bad amount %v", obj["amount"])
	}
	price, ok := toDecimal(obj["price"])
	if !ok || price.IsNegative() {
		return sim.Transaction{}, fmt.Errorf("bad price %v", obj["price"])
	}
	at, ok := toTime(obj["timestamp"])
	if !ok {
		return sim.Transaction{}, fmt.Errorf("bad timestamp %v", obj["timestamp"])
	}

	total, ok := toDecimal(obj["total"])
	if !ok {
		total = price.Mul(decimal.NewFromInt(qty))
	}
	txID, _ := obj["id"].(string)
	if txID == "" {
		txID = id.At(at)
	}

	return sim.Transaction{
		ID:         txID,
		Side:       side,
		Quantity:   qty,
		UnitPrice:  price,
		Total:      total,
		ExecutedAt: at,
	}, nil
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

var maxCount = decimal.NewFromInt(math.MaxInt64)

func toCount(v any) (int64, bool) {
	d, ok := toDecimal(v)
	if !ok || d.IsNegative() || !d.IsInteger() || d.GreaterThan(maxCount) {
		return 0, false
	}
	return d.IntPart(), true
}

func toTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(timeLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}
