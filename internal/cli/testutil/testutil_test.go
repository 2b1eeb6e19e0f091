package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestData(t *testing.T) {
	dir := SetupTestData(t)

	for _, name := range []string{"sales.csv", "sales.json", "sales.tsv", "notes.txt"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sales.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "id\tregion\tamount")
}

func TestAssertValidMarkdown(t *testing.T) {
	AssertValidMarkdown(t, "## Sheet1\n\n| a | b |\n| --- | --- |\n| 1 | 2 |\n\n| c |\n| --- |\n")
	AssertNoANSI(t, "| a | b |")
}
