// Package config provides configuration management for the structload CLI.
//
// Settings are layered with koanf: built-in defaults, then a structload.yaml
// file, then STRUCTLOAD_ environment variables, then command-line flags.
package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Default configuration values.
const (
	DefaultOutput    = "auto" // Auto-detect: TTY=table, non-TTY=markdown
	DefaultLogFormat = "text"
	DefaultEnvFile   = ".env"
)

// OutputModes lists the accepted values of the output setting.
var OutputModes = []string{"auto", "table", "markdown", "json", "csv", "yaml"}

// LogFormats lists the accepted values of the log_format setting.
var LogFormats = []string{"text", "json"}

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool   `koanf:"verbose"`
	OutputFormat string `koanf:"output"`
	LogFormat    string `koanf:"log_format"`
	EnvFile      string `koanf:"env_file"`
	Source       string `koanf:"source"`
	Limit        int    `koanf:"limit"`
	// Options is the loader options bag (connection_string, region, sheets...).
	Options map[string]any `koanf:"options"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputModes, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q (valid: %v)", c.OutputFormat, OutputModes)
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return fmt.Errorf("invalid log format %q (valid: %v)", c.LogFormat, LogFormats)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	return nil
}

// LoaderOptions returns a copy of Options ready for the loader: ${VAR}
// references in string values are expanded through lookup, and sheet
// values given as text ("0", "Regions") become indices where numeric.
func (c *Config) LoaderOptions(lookup func(string) (string, bool)) map[string]any {
	out := make(map[string]any, len(c.Options))
	for k, v := range c.Options {
		switch val := v.(type) {
		case string:
			out[k] = expandEnvVars(val, lookup)
		default:
			out[k] = val
		}
	}
	if sheets, ok := out["sheets"]; ok {
		out["sheets"] = normalizeSheets(sheets)
	}
	return out
}

func normalizeSheets(v any) any {
	switch s := v.(type) {
	case string:
		return sheetValue(s)
	case []string:
		out := make([]any, len(s))
		for i, name := range s {
			out[i] = sheetValue(name)
		}
		return out
	case []any:
		out := make([]any, len(s))
		for i, item := range s {
			if name, ok := item.(string); ok {
				out[i] = sheetValue(name)
			} else {
				out[i] = item
			}
		}
		return out
	default:
		return v
	}
}

// sheetNamePrefix forces a sheet reference to be read as a name, for
// sheets titled like numbers ("name:2023").
const sheetNamePrefix = "name:"

// sheetValue reads a numeric string as a zero-based sheet index and
// anything else as a sheet name.
func sheetValue(s string) any {
	if name, ok := strings.CutPrefix(s, sheetNamePrefix); ok {
		return name
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return s
}
