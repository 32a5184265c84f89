// Package journal persists the portfolio state in a string-keyed store and
// exports the transaction history.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultKey is the store entry holding the portfolio blob.
const DefaultKey = "papertrade.portfolio"

var (
	// ErrNotFound is returned by Store.Get for a key that was never written.
	ErrNotFound = errors.New("key not found")
	// ErrCorrupt reports a stored blob that could not be decoded at all.
	ErrCorrupt = errors.New("persisted state is corrupt")
)

// Store is a durable string-keyed store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open builds a store by kind: "file" (path is a directory), "sqlite" (path
// is a database file) or "memory" (path is ignored).
func Open(kind, path string) (Store, error) {
	switch strings.ToLower(kind) {
	case "file":
		return NewFileStore(path)
	case "sqlite":
		return NewSQLite(path)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q (want file|sqlite|memory)", kind)
	}
}
