package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted by ApplyEnvironment.
const (
	EnvAWSRegion          = "AWS_REGION"
	EnvAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvAWSSessionToken    = "AWS_SESSION_TOKEN"
	EnvAWSEndpointS3      = "AWS_ENDPOINT_URL_S3"
	EnvAzureConnection    = "AZURE_STORAGE_CONNECTION_STRING"
	EnvAzureContainer     = "AZURE_STORAGE_CONTAINER"
	EnvDatabaseURL        = "DATABASE_URL"
)

// Environment is a snapshot of the process environment overlaid with the
// values of an optional env file. It is read once and never written back
// to the process.
type Environment struct {
	k *koanf.Koanf
}

// LoadEnvironment snapshots the process environment and overlays path, a
// dotenv file, on top of it. An empty path or a missing file leaves the
// process environment as is; a malformed file is an error.
func LoadEnvironment(path string) (*Environment, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("failed to load process environment: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), dotenv.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load env file %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat env file %s: %w", path, err)
		}
	}

	return &Environment{k: k}, nil
}

// Lookup returns the value of key and whether it is set.
func (e *Environment) Lookup(key string) (string, bool) {
	if e == nil || !e.k.Exists(key) {
		return "", false
	}
	return e.k.String(key), true
}

// Get returns the value of key, or "" if unset.
func (e *Environment) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// ApplyEnvironment fills unset credentials and connection settings from
// env. Values already present in c are kept.
func (c *Config) ApplyEnvironment(env *Environment) {
	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = env.Get(key)
		}
	}
	fill(&c.S3.Region, EnvAWSRegion)
	fill(&c.S3.AccessKeyID, EnvAWSAccessKeyID)
	fill(&c.S3.SecretAccessKey, EnvAWSSecretAccessKey)
	fill(&c.S3.SessionToken, EnvAWSSessionToken)
	fill(&c.S3.Endpoint, EnvAWSEndpointS3)
	fill(&c.Azure.ConnectionString, EnvAzureConnection)
	fill(&c.Azure.Container, EnvAzureContainer)
	fill(&c.Database.ConnectionString, EnvDatabaseURL)
}
