package commands

import (
	"errors"

	"github.com/leapstack-labs/structload/internal/cli/config"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/leapstack-labs/structload/pkg/format"
	"github.com/leapstack-labs/structload/pkg/loader"
	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [location]",
		Short: "Load a data file, object or query result and print it",
		Long: `Load tabular data from a local file, an S3 object, an Azure blob or a
SQL query, and print it.

The format is detected from the location's extension (csv, parquet, xlsx,
json) unless --format is given. Database sources take no format; the
location is an optional label and the data comes from --query.

Credentials not given as flags are read from the environment and from the
env file (--env-file, default .env): AWS_REGION, AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY, AWS_ENDPOINT_URL_S3, AZURE_STORAGE_CONNECTION_STRING,
AZURE_STORAGE_CONTAINER and DATABASE_URL.

Output adapts to environment:
  - Terminal: boxed table
  - Piped/Scripted: Markdown format

Use --output to override: auto, table, markdown, json, csv, yaml`,
		Example: `  # Load a local CSV file
  structload load data/sales.csv

  # Load two worksheets, by name and by position
  structload load report.xlsx --sheet Summary --sheet 2

  # Load a worksheet named like a number
  structload load report.xlsx --sheet name:2023

  # Load a Parquet object from S3 as JSON
  structload load s3://bucket/events.parquet --source s3 --output json

  # Load a query result
  structload load --source database \
    --connection-string postgresql://reader@localhost/sales \
    --query "SELECT * FROM orders"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := ""
			if len(args) == 1 {
				location = args[0]
			}
			return runLoad(cmd, location)
		},
	}

	cmd.Flags().String("source", "", "Source: local, s3, azure or database (default local)")
	cmd.Flags().String("format", "", "Format override: csv, parquet, xlsx or json")
	cmd.Flags().StringSlice("sheet", nil, "Worksheet to load, by name or zero-based index; prefix name: for numeric names (repeatable)")
	cmd.Flags().String("engine", "", "Parquet engine: auto, pyarrow or fastparquet")
	cmd.Flags().String("delimiter", "", "CSV field delimiter")
	cmd.Flags().String("encoding", "", "CSV text encoding (e.g. latin1)")
	cmd.Flags().String("connection-string", "", "Database URL or Azure storage connection string")
	cmd.Flags().String("container", "", "Azure blob container")
	cmd.Flags().String("query", "", "SQL query for the database source")
	cmd.Flags().String("region", "", "AWS region")
	cmd.Flags().String("endpoint", "", "S3-compatible endpoint URL")
	cmd.Flags().Int("limit", 0, "Maximum rows to print per table (0 for all)")

	_ = cmd.RegisterFlagCompletionFunc("source", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"local", "s3", "azure", "database"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return core.SupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		var engines []string
		for _, e := range format.ParquetEngines() {
			engines = append(engines, string(e))
		}
		return engines, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runLoad(cmd *cobra.Command, location string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	if location == "" && core.ParseSource(cfg.Source) != core.SourceDatabase {
		return errors.New("location is required unless --source is database")
	}

	env, err := loader.LoadEnvironment(cfg.EnvFile)
	if err != nil {
		return err
	}

	lcfg, err := loader.FromOptions(location, cfg.Source, cfg.LoaderOptions(env.Lookup))
	if err != nil {
		return err
	}
	lcfg.ApplyEnvironment(env)
	lcfg.Logger = logger

	l, err := loader.New(lcfg)
	if err != nil {
		return err
	}

	res, err := l.Load(ctx)
	if err != nil {
		return err
	}

	r := NewRenderer(cmd.OutOrStdout(), cfg.OutputFormat)
	return r.Tables(res.Tables, cfg.Limit)
}
