package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("STRUCTLOAD_TEST_REGION", "us-east-1")
	t.Setenv("STRUCTLOAD_TEST_ONLY_PROCESS", "kept")

	path := writeEnvFile(t, "# credentials\nSTRUCTLOAD_TEST_REGION=eu-central-1\nSTRUCTLOAD_TEST_ONLY_FILE=added\n")

	env, err := LoadEnvironment(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1", env.Get("STRUCTLOAD_TEST_REGION"), "env file overrides process env")
	assert.Equal(t, "kept", env.Get("STRUCTLOAD_TEST_ONLY_PROCESS"))
	assert.Equal(t, "added", env.Get("STRUCTLOAD_TEST_ONLY_FILE"))

	_, ok := env.Lookup("STRUCTLOAD_TEST_UNSET")
	assert.False(t, ok)

	_, set := os.LookupEnv("STRUCTLOAD_TEST_ONLY_FILE")
	assert.False(t, set, "process environment is not modified")
}

func TestLoadEnvironment_MissingFile(t *testing.T) {
	t.Setenv("STRUCTLOAD_TEST_REGION", "us-east-1")

	env, err := LoadEnvironment(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", env.Get("STRUCTLOAD_TEST_REGION"))

	env, err = LoadEnvironment("")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", env.Get("STRUCTLOAD_TEST_REGION"))
}

func TestConfig_ApplyEnvironment(t *testing.T) {
	path := writeEnvFile(t, "AWS_REGION=eu-west-1\n"+
		"AWS_ACCESS_KEY_ID=AKIA\n"+
		"AWS_SECRET_ACCESS_KEY=secret\n"+
		"AZURE_STORAGE_CONNECTION_STRING=UseDevelopmentStorage=true\n"+
		"AZURE_STORAGE_CONTAINER=raw\n"+
		"DATABASE_URL=sqlite://\n")

	env, err := LoadEnvironment(path)
	require.NoError(t, err)

	cfg := Config{
		S3:       S3Options{Region: "us-east-2"},
		Database: DatabaseOptions{Query: "SELECT 1"},
	}
	cfg.ApplyEnvironment(env)

	assert.Equal(t, "us-east-2", cfg.S3.Region, "explicit values win")
	assert.Equal(t, "AKIA", cfg.S3.AccessKeyID)
	assert.Equal(t, "secret", cfg.S3.SecretAccessKey)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.Azure.ConnectionString)
	assert.Equal(t, "raw", cfg.Azure.Container)
	assert.Equal(t, "sqlite://", cfg.Database.ConnectionString)
	assert.Equal(t, "SELECT 1", cfg.Database.Query)
}

func TestConfig_ApplyNilEnvironment(t *testing.T) {
	cfg := Config{S3: S3Options{Region: "us-east-2"}}
	cfg.ApplyEnvironment(nil)
	assert.Equal(t, "us-east-2", cfg.S3.Region)
}
