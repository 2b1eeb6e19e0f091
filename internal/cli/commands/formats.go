package commands

import (
	"strings"

	"github.com/leapstack-labs/structload/internal/cli/config"
	"github.com/leapstack-labs/structload/pkg/adapter"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/leapstack-labs/structload/pkg/format"
	"github.com/spf13/cobra"
)

// NewFormatsCommand creates the formats command.
func NewFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported formats, sources and database schemes",
		Long: `List the file formats the loader can parse, the sources it can read
from, the Parquet engines it accepts and the database connection-string
schemes it has adapters for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetConfig(cmd.Context())
			r := NewRenderer(cmd.OutOrStdout(), cfg.OutputFormat)
			return r.Tables([]*core.Table{capabilities()}, 0)
		},
	}
}

// capabilities describes what this build can load as a table of
// kind/name/details rows.
func capabilities() *core.Table {
	t := core.NewTable(
		core.Column{Name: "kind", Type: core.TypeString},
		core.Column{Name: "name", Type: core.TypeString},
		core.Column{Name: "details", Type: core.TypeString},
	)
	add := func(kind, name, details string) {
		_ = t.AppendRow([]any{kind, name, details})
	}

	for _, tag := range format.Registered() {
		details := "." + tag
		if f, err := core.ParseFormat(tag); err == nil && f.MultiTable() {
			details += ", one table per worksheet"
		}
		add("format", tag, details)
	}

	var engines []string
	for _, e := range format.ParquetEngines() {
		engines = append(engines, string(e))
	}
	add("parquet engine", strings.Join(engines, ", "), "auto and pyarrow read through Arrow")

	for _, s := range []core.Source{core.SourceLocal, core.SourceS3, core.SourceAzure, core.SourceDatabase} {
		add("source", s.String(), sourceDetails(s))
	}

	for _, scheme := range adapter.ListAdapters() {
		add("database", scheme, scheme+"://...")
	}
	return t
}

func sourceDetails(s core.Source) string {
	switch s {
	case core.SourceS3:
		return "bucket/key or s3://bucket/key"
	case core.SourceAzure:
		return "container/blob or azure://container/blob"
	case core.SourceDatabase:
		return "connection_string and query options"
	default:
		return "file path"
	}
}
