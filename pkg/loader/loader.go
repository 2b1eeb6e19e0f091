// Package loader is the single entry point for loading structured data.
//
// A Loader is built once per location and dispatches Load to the transport
// named by its source (local file, S3, Azure Blob, database). File bytes
// from every transport go through the same format parsers, and every
// result goes through the same post-load validation.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/structload/pkg/adapter"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/leapstack-labs/structload/pkg/format"
	"github.com/leapstack-labs/structload/pkg/storage"
	"github.com/leapstack-labs/structload/pkg/storage/azure"
	"github.com/leapstack-labs/structload/pkg/storage/s3"

	// Database adapters register themselves by connection-string scheme.
	_ "github.com/leapstack-labs/structload/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/structload/pkg/adapters/mysql"
	_ "github.com/leapstack-labs/structload/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/structload/pkg/adapters/sqlite"
)

type (
	// S3Options configures the S3 client.
	S3Options = s3.Options
	// AzureOptions configures the Azure Blob client.
	AzureOptions = azure.Options
)

// DatabaseOptions configures the database source.
type DatabaseOptions struct {
	// ConnectionString is a URL such as postgresql://user@host/db or
	// sqlite:///path/to.db.
	ConnectionString string
	// Query is the SELECT statement whose result set is loaded.
	Query string
}

// Config holds loader configuration.
type Config struct {
	// Location is a file path, an object key ("bucket/key", "s3://bucket/key"),
	// a blob name, or for the database source a free-form label.
	Location string
	// Source is one of "s3", "azure", "database". Anything else is local.
	Source string
	// Format overrides extension-based detection when set.
	Format string

	Options  format.Options
	S3       S3Options
	Azure    AzureOptions
	Database DatabaseOptions

	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger

	// S3Fetcher and AzureFetcher replace the default clients. A default
	// client is built per Load when nil.
	S3Fetcher    storage.Fetcher
	AzureFetcher storage.Fetcher
}

// Loader loads one location.
type Loader struct {
	cfg    Config
	source core.Source
	format core.Format
	logger *slog.Logger
}

// Result is the outcome of a Load.
type Result struct {
	// Tables holds one table, or one per worksheet for xlsx.
	Tables []*core.Table
	// Multi is true when the format yields a sequence of tables (xlsx),
	// even if that sequence has a single element.
	Multi bool
	// Reports holds the post-load validation of each table.
	Reports []Report
}

// Table returns the first table, or nil if there is none.
func (r *Result) Table() *core.Table {
	if len(r.Tables) == 0 {
		return nil
	}
	return r.Tables[0]
}

// New validates cfg and creates a Loader.
//
// For every source but database the format is resolved now, from
// cfg.Format or the location's extension, and cached. For local files the
// location must be an existing regular file. Failures are configuration
// errors.
func New(cfg Config) (*Loader, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "loader")

	l := &Loader{
		cfg:    cfg,
		source: core.ParseSource(cfg.Source),
		logger: logger,
	}

	if l.source != core.SourceDatabase {
		f, err := l.resolveFormat()
		if err != nil {
			return nil, err
		}
		l.format = f
		logger.Debug("initialized loader", "location", cfg.Location, "format", f.String(), "source", l.source.String())
	} else {
		logger.Debug("initialized loader", "source", l.source.String())
	}

	if l.source == core.SourceLocal {
		if err := l.validatePath(); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *Loader) resolveFormat() (core.Format, error) {
	tag := l.cfg.Format
	if tag == "" {
		tag = core.Extension(l.cfg.Location)
	}
	f, err := core.ParseFormat(tag)
	if err != nil {
		l.logger.Error("unsupported file format", "format", tag, "location", l.cfg.Location)
		return core.FormatUnknown, core.ConfigurationError(err, "invalid configuration")
	}
	return f, nil
}

func (l *Loader) validatePath() error {
	info, err := os.Stat(l.cfg.Location)
	if errors.Is(err, fs.ErrNotExist) {
		l.logger.Error("path not found", "path", l.cfg.Location)
		return core.ConfigurationError(fs.ErrNotExist, "data file not found: %s", l.cfg.Location)
	}
	if err != nil {
		l.logger.Error("path not accessible", "path", l.cfg.Location, "error", err)
		return core.ConfigurationError(err, "data file not accessible: %s", l.cfg.Location)
	}
	if !info.Mode().IsRegular() {
		l.logger.Error("path is not a file", "path", l.cfg.Location)
		return core.ConfigurationError(core.ErrNotAFile, "not a file: %s", l.cfg.Location)
	}
	return nil
}

// DetectedFormat returns the cached format tag, or "" for the database
// source, which has no file format.
func (l *Loader) DetectedFormat() string {
	if l.format == core.FormatUnknown {
		return ""
	}
	return l.format.String()
}

// Source returns the transport the loader dispatches to.
func (l *Loader) Source() core.Source {
	return l.source
}

// Load fetches and parses the data. Every failure is a data loading error
// carrying the underlying cause.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	logger := l.logger.With("load_id", uuid.NewString())
	start := time.Now()
	logger.Info("loading data", "source", l.source.String(), "location", l.cfg.Location)

	tables, err := l.load(ctx, logger)
	if err != nil {
		logger.Error("failed to load data", "location", l.cfg.Location, "error", err)
		return nil, core.DataLoadingError(err, "data loading failed")
	}

	res := &Result{
		Tables:  tables,
		Multi:   l.format.MultiTable(),
		Reports: make([]Report, len(tables)),
	}
	for i, t := range tables {
		res.Reports[i] = validate(t, logger)
	}
	logger.Debug("loaded data", "tables", len(tables), "duration", time.Since(start))
	return res, nil
}

func (l *Loader) load(ctx context.Context, logger *slog.Logger) ([]*core.Table, error) {
	switch l.source {
	case core.SourceS3:
		return l.loadRemote(ctx, l.s3Fetcher(logger), "S3 error")
	case core.SourceAzure:
		return l.loadRemote(ctx, l.azureFetcher(logger), "Azure Blob error")
	case core.SourceDatabase:
		return l.loadDatabase(ctx, logger)
	default:
		return l.loadFile(ctx)
	}
}

// loadFile reads a local file. The format options are checked first so
// that an invalid parquet engine fails without touching the file.
func (l *Loader) loadFile(ctx context.Context) ([]*core.Table, error) {
	if err := l.cfg.Options.Validate(l.format); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(l.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", l.cfg.Location, err)
	}
	return format.Parse(ctx, l.format, data, l.cfg.Options)
}

func (l *Loader) loadRemote(ctx context.Context, f storage.Fetcher, msg string) ([]*core.Table, error) {
	if err := l.cfg.Options.Validate(l.format); err != nil {
		return nil, err
	}
	data, err := f.Fetch(ctx, l.cfg.Location)
	if err != nil {
		return nil, core.DataLoadingError(err, "%s", msg)
	}
	return format.Parse(ctx, l.format, data, l.cfg.Options)
}

func (l *Loader) loadDatabase(ctx context.Context, logger *slog.Logger) ([]*core.Table, error) {
	opts := l.cfg.Database
	if opts.ConnectionString == "" {
		return nil, core.DataLoadingError(core.ErrMissingOption, "Database error: connection_string is required")
	}
	if opts.Query == "" {
		return nil, core.DataLoadingError(core.ErrMissingOption, "Database error: query is required")
	}

	db, err := adapter.Open(ctx, opts.ConnectionString, logger)
	if err != nil {
		return nil, core.DataLoadingError(err, "Database error")
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query(ctx, opts.Query)
	if err != nil {
		return nil, core.DataLoadingError(err, "Database error")
	}
	defer func() { _ = rows.Close() }()

	t, err := adapter.ScanTable(rows)
	if err != nil {
		return nil, core.DataLoadingError(err, "Database error")
	}
	return []*core.Table{t}, nil
}

func (l *Loader) s3Fetcher(logger *slog.Logger) storage.Fetcher {
	if l.cfg.S3Fetcher != nil {
		return l.cfg.S3Fetcher
	}
	return s3.New(l.cfg.S3, logger)
}

func (l *Loader) azureFetcher(logger *slog.Logger) storage.Fetcher {
	if l.cfg.AzureFetcher != nil {
		return l.cfg.AzureFetcher
	}
	return azure.New(l.cfg.Azure, logger)
}
