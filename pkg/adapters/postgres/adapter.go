package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
	"github.com/leapstack-labs/structload/pkg/adapter"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "pgx"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return err
	}

	u, _ := cfg.URL("postgres")
	a.Logger.Debug("connecting to postgres",
		slog.String("host", u.Host),
		slog.String("database", strings.TrimPrefix(u.Path, "/")))

	return a.Open(ctx, a.DriverName(), dsn, cfg)
}

// buildPostgresDSN rewrites a postgres/postgresql connection string, with
// any driver suffix dropped, into a URL pgx accepts. sslmode defaults to
// "disable" when not given.
func buildPostgresDSN(cfg adapter.Config) (string, error) {
	u, err := cfg.URL("postgres")
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		u.Host = "localhost"
	}

	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()

	if u.Path == "" || u.Path == "/" {
		return "", fmt.Errorf("postgres connection string %s names no database", cfg)
	}
	return u.String(), nil
}

// Ensure Adapter implements adapter.Adapter interface
var _ adapter.Adapter = (*Adapter)(nil)
