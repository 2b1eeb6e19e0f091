package duckdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/structload/pkg/adapter"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Adapter implements the adapter.Adapter interface for DuckDB.
type Adapter struct {
	adapter.BaseSQLAdapter
	params *Params
}

// New creates a new DuckDB adapter instance.
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
	return "duckdb"
}

// Connect establishes a connection to DuckDB.
// "duckdb://" and "duckdb:///:memory:" open an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	a.params = parseParams(cfg.Query())
	path := cfg.Path()

	a.Logger.Debug("connecting to duckdb", slog.String("path", path))
	if err := a.Open(ctx, a.DriverName(), a.params.dsn(path), cfg); err != nil {
		return err
	}

	for _, ext := range a.params.Extensions {
		if err := a.loadExtension(ctx, ext); err != nil {
			_ = a.Close()
			a.DB = nil
			return err
		}
	}
	return nil
}

func (a *Adapter) loadExtension(ctx context.Context, ext string) error {
	a.Logger.Debug("loading duckdb extension", slog.String("extension", ext))
	if err := a.Exec(ctx, fmt.Sprintf("INSTALL %s", ext)); err != nil {
		return fmt.Errorf("failed to install extension %s: %w", ext, err)
	}
	if err := a.Exec(ctx, fmt.Sprintf("LOAD %s", ext)); err != nil {
		return fmt.Errorf("failed to load extension %s: %w", ext, err)
	}
	return nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
