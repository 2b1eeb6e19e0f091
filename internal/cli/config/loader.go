package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// configKey is used to store config in context.
type configKey struct{}

// Package-level koanf instance and config file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
)

// optionFlags are the flags that feed the loader options bag rather than a
// top-level setting.
var optionFlags = map[string]string{
	"format":            "format",
	"sheet":             "sheets",
	"engine":            "engine",
	"delimiter":         "delimiter",
	"encoding":          "encoding",
	"connection-string": "connection_string",
	"container":         "container",
	"query":             "query",
	"region":            "region",
	"endpoint":          "endpoint",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// findConfigFile finds the config file to use.
// Priority: explicit path > structload.yaml > structload.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"structload.yaml", "structload.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
}

// envKey maps STRUCTLOAD_LIMIT to limit and STRUCTLOAD_OPTIONS_REGION to
// options.region.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "STRUCTLOAD_"))
	if rest, ok := strings.CutPrefix(key, "options_"); ok {
		return "options." + rest
	}
	return key
}

// flagKey maps a flag name to its config key.
func flagKey(name string) string {
	if opt, ok := optionFlags[name]; ok {
		return "options." + opt
	}
	return strings.ReplaceAll(name, "-", "_")
}

// FlagKey returns the config key a command-line flag sets, and false for
// flags that are not settings.
func FlagKey(name string) (string, bool) {
	switch name {
	case "config", "help":
		return "", false
	}
	return flagKey(name), true
}

// EnvVar returns the environment variable that sets key.
func EnvVar(key string) string {
	return "STRUCTLOAD_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadConfig loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"verbose":    false,
		"output":     DefaultOutput,
		"log_format": DefaultLogFormat,
		"env_file":   DefaultEnvFile,
		"limit":      0,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	configFileUsed = findConfigFile(cfgFile)
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (STRUCTLOAD_ prefix)
	if err := k.Load(env.Provider("STRUCTLOAD_", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// WithConfig returns a copy of ctx carrying cfg.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// GetConfig retrieves the config from the command context, falling back to
// the defaults.
func GetConfig(ctx context.Context) *Config {
	if c, ok := ctx.Value(configKey{}).(*Config); ok {
		return c
	}
	return &Config{
		OutputFormat: DefaultOutput,
		LogFormat:    DefaultLogFormat,
		EnvFile:      DefaultEnvFile,
	}
}

// expandEnvVars expands ${VAR} patterns in a string through lookup.
// Unknown variables are left as-is.
func expandEnvVars(s string, lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val, ok := lookup(varName); ok && val != "" {
			return val
		}
		return match
	})
}
