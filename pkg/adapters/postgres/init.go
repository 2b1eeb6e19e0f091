// Package postgres provides a PostgreSQL database adapter.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/structload/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/structload/pkg/adapter"
)

func init() {
	for _, scheme := range []string{"postgres", "postgresql"} {
		adapter.Register(scheme, func(logger *slog.Logger) adapter.Adapter { return New(logger) })
	}
}
