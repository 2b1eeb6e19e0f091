package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/structload/internal/cli/config"
	"github.com/leapstack-labs/structload/pkg/adapter"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/leapstack-labs/structload/pkg/format"
	"github.com/leapstack-labs/structload/pkg/loader"
)

// generateConfigDocs generates the configuration reference.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := generateConfigurationDoc(outDir); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

// ConfigField represents a configuration field definition.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
	Category    string // "cli", "options"
}

// getConfigSchema returns the configuration schema definition.
// Based on internal/cli/config.Config and the loader options bag.
func getConfigSchema() []ConfigField {
	return []ConfigField{
		// CLI settings
		{Name: "output", Type: "string", Default: config.DefaultOutput, Description: "Output format: " + strings.Join(config.OutputModes, ", "), Category: "cli"},
		{Name: "log_format", Type: "string", Default: config.DefaultLogFormat, Description: "Log format: " + strings.Join(config.LogFormats, ", "), Category: "cli"},
		{Name: "env_file", Type: "string", Default: config.DefaultEnvFile, Description: "Dotenv file overlaid on the process environment", Category: "cli"},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Log at debug level", Category: "cli"},
		{Name: "source", Type: "string", Default: "local", Description: "Source: local, s3, azure, database", Category: "cli"},
		{Name: "limit", Type: "int", Default: "0", Description: "Maximum rows printed per table, 0 for all", Category: "cli"},

		// Loader options
		{Name: "format", Type: "string", Description: "Format override: " + strings.Join(core.SupportedFormats(), ", "), Category: "options"},
		{Name: "connection_string", Type: "string", Description: "Database URL or Azure storage connection string", Category: "options"},
		{Name: "query", Type: "string", Description: "SQL query for the database source", Category: "options"},
		{Name: "container", Type: "string", Description: "Azure blob container", Category: "options"},
		{Name: "region", Type: "string", Description: "AWS region", Category: "options"},
		{Name: "endpoint", Type: "string", Description: "S3-compatible endpoint URL", Category: "options"},
		{Name: "access_key_id", Type: "string", Description: "AWS access key id", Category: "options"},
		{Name: "secret_access_key", Type: "string", Description: "AWS secret access key", Category: "options"},
		{Name: "session_token", Type: "string", Description: "AWS session token", Category: "options"},
		{Name: "path_style", Type: "bool", Default: "false", Description: "Path-style S3 addressing", Category: "options"},
		{Name: "engine", Type: "string", Default: string(format.EngineAuto), Description: "Parquet engine: " + engineList(), Category: "options"},
		{Name: "sheets", Type: "list", Description: "Worksheets by name or zero-based index; all when omitted. Numeric strings are indices, prefix name: for numeric sheet names", Category: "options"},
		{Name: "delimiter", Type: "string", Default: ",", Description: "CSV field delimiter (a single character, or \\t)", Category: "options"},
		{Name: "encoding", Type: "string", Default: "utf-8", Description: "CSV text encoding", Category: "options"},
	}
}

func engineList() string {
	var names []string
	for _, e := range format.ParquetEngines() {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}

// generateConfigurationDoc generates the configuration reference page.
func generateConfigurationDoc(outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter("Configuration", "structload configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph("structload reads `structload.yaml` (or `.yml`) from the working directory, then `STRUCTLOAD_` environment variables, then command-line flags. Later sources win.")

	fields := getConfigSchema()
	writeFields := func(category string) {
		headers := []string{"Field", "Type", "Default", "Description"}
		var rows [][]string
		for _, f := range fields {
			if f.Category != category {
				continue
			}
			defVal := f.Default
			if defVal == "" {
				defVal = "-"
			}
			rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(defVal), f.Description})
		}
		w.Table(headers, rows)
	}

	w.Header(2, "Settings")
	writeFields("cli")

	w.Header(2, "Loader Options")
	w.Paragraph("Set under the `options` key, as `STRUCTLOAD_OPTIONS_<NAME>` variables, or with the matching `load` flags. String values may reference `${VAR}` from the environment or env file.")
	writeFields("options")
	w.CodeBlock("yaml", `output: table
options:
  region: eu-west-1
  sheets: [Summary, 2]
  connection_string: postgresql://${DB_USER}@localhost/sales`)

	w.Header(2, "Credentials")
	w.Paragraph("Options left unset are filled from these variables:")
	envRows := [][]string{
		{InlineCode(loader.EnvAWSRegion), "S3 region"},
		{InlineCode(loader.EnvAWSAccessKeyID), "S3 access key id"},
		{InlineCode(loader.EnvAWSSecretAccessKey), "S3 secret access key"},
		{InlineCode(loader.EnvAWSSessionToken), "S3 session token"},
		{InlineCode(loader.EnvAWSEndpointS3), "S3 endpoint"},
		{InlineCode(loader.EnvAzureConnection), "Azure storage connection string"},
		{InlineCode(loader.EnvAzureContainer), "Azure blob container"},
		{InlineCode(loader.EnvDatabaseURL), "Database connection string"},
	}
	w.Table([]string{"Variable", "Used for"}, envRows)

	w.Header(2, "Database Schemes")
	var schemes []string
	for _, s := range adapter.ListAdapters() {
		schemes = append(schemes, InlineCode(s+"://"))
	}
	w.BulletList(schemes)

	filename := filepath.Join(outDir, "configuration.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
