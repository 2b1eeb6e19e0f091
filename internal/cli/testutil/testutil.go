// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// SalesCSV is the content of sales.csv in SetupTestData.
const SalesCSV = `id,region,amount
1,EU,10.5
2,,20
3,NA,7
`

// SetupTestData creates a temporary directory with sample data files:
// sales.csv, sales.json (the same rows as records), sales.tsv (tab
// separated) and notes.txt (an unsupported format).
func SetupTestData(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	files := map[string]string{
		"sales.csv": SalesCSV,
		"sales.json": `[{"id":1,"region":"EU","amount":10.5},` +
			`{"id":2,"region":null,"amount":20},` +
			`{"id":3,"region":null,"amount":7}]`,
		"sales.tsv": strings.ReplaceAll(SalesCSV, ",", "\t"),
		"notes.txt": "not tabular",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}

	return tmpDir
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for empty headers and that every table row has the same
// number of cells as the table's header.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	cells := -1
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}

		if !strings.HasPrefix(trimmed, "|") {
			cells = -1
			continue
		}
		n := strings.Count(trimmed, "|") - strings.Count(trimmed, `\|`)
		if cells == -1 {
			cells = n
		} else if n != cells {
			t.Errorf("table row at line %d has %d separators, header has %d: %q", i+1, n, cells, line)
		}
	}
}
