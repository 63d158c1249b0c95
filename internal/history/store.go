// Package history records which listing urls have already been notified.
// Business logic depends on the Store interface only; the backends are an
// append-only text file, an in-memory set, SQLite and PostgreSQL.
package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/donaldgifford/rent-notifier/internal/config"
)

// ErrUnknownDriver is returned by Open for an unrecognized history driver.
var ErrUnknownDriver = errors.New("unknown history driver")

// Store is the persisted record of previously notified listing urls.
//
// Records are never removed. Append does not deduplicate: callers pass only
// urls that Load did not return.
type Store interface {
	// Load returns every recorded url. A store with no prior state returns
	// an empty set, not an error.
	Load(ctx context.Context) (map[string]struct{}, error)
	// Append records each url, in order.
	Append(ctx context.Context, urls []string) error
	// Close releases the backend.
	Close() error
}

// Open builds the Store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.HistoryConfig) (Store, error) {
	switch cfg.Driver {
	case "", "file":
		return NewFileStore(cfg.Path), nil
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
