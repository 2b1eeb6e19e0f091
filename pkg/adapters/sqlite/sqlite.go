// Package sqlite provides a SQLite database adapter on the pure-Go
// modernc.org/sqlite driver.
//
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/structload/pkg/adapters/sqlite"
package sqlite

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/structload/pkg/adapter"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	for _, scheme := range []string{"sqlite", "sqlite3"} {
		adapter.Register(scheme, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
	}
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DriverName returns the database/sql driver name.
func (a *Adapter) DriverName() string {
	return "sqlite"
}

// Connect opens the database file named by the connection string.
// "sqlite://" opens an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path()
	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	if err := a.Open(ctx, a.DriverName(), path, cfg); err != nil {
		return err
	}
	// Each pooled connection to ":memory:" would be a separate database.
	a.DB.SetMaxOpenConns(1)
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
