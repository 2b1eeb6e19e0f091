// Package adapter provides the database interface behind the database
// source.
//
// Concrete adapter implementations are in pkg/adapters/ subdirectories and
// register themselves under the connection-string schemes they serve.
package adapter

import (
	"context"
	"database/sql"
)

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Query executes a SQL statement that returns rows.
	// The caller must close the returned rows.
	Query(ctx context.Context, sql string) (*sql.Rows, error)

	// DriverName returns the database/sql driver the adapter opens.
	DriverName() string
}
