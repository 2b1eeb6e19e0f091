package loader

import (
	"testing"

	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/leapstack-labs/structload/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOptions(t *testing.T) {
	cfg, err := FromOptions("s3://bucket/sales.csv", "s3", map[string]any{
		"region":            "eu-west-1",
		"endpoint":          "http://localhost:9000",
		"access_key_id":     "AKIA",
		"secret_access_key": "secret",
		"path_style":        "true",
		"delimiter":         ";",
		"encoding":          "latin1",
	})
	require.NoError(t, err)

	assert.Equal(t, "s3://bucket/sales.csv", cfg.Location)
	assert.Equal(t, "s3", cfg.Source)
	assert.Equal(t, S3Options{
		Region:          "eu-west-1",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "secret",
		Endpoint:        "http://localhost:9000",
		UsePathStyle:    true,
	}, cfg.S3)
	assert.Equal(t, format.CSVOptions{Delimiter: ';', Encoding: "latin1"}, cfg.Options.CSV)
}

func TestFromOptions_SharedConnectionString(t *testing.T) {
	cfg, err := FromOptions("", "database", map[string]any{
		"connection_string": "postgresql://app@db/sales",
		"query":             "SELECT 1",
		"container":         "raw",
	})
	require.NoError(t, err)

	assert.Equal(t, DatabaseOptions{ConnectionString: "postgresql://app@db/sales", Query: "SELECT 1"}, cfg.Database)
	assert.Equal(t, AzureOptions{ConnectionString: "postgresql://app@db/sales", Container: "raw"}, cfg.Azure)
}

func TestFromOptions_Sheets(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []format.Sheet
	}{
		{"absent", nil, nil},
		{"name", "Regions", []format.Sheet{format.SheetByName("Regions")}},
		{"index", 2, []format.Sheet{format.SheetByIndex(2)}},
		{"float index from json", float64(1), []format.Sheet{format.SheetByIndex(1)}},
		{"mixed list", []any{"Regions", 0}, []format.Sheet{format.SheetByName("Regions"), format.SheetByIndex(0)}},
		{"string list", []string{"a", "b"}, []format.Sheet{format.SheetByName("a"), format.SheetByName("b")}},
		{"int list", []int{1, 0}, []format.Sheet{format.SheetByIndex(1), format.SheetByIndex(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := map[string]any{}
			if tt.value != nil {
				opts["sheets"] = tt.value
			}
			cfg, err := FromOptions("report.xlsx", "", opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Options.Excel.Sheets)
		})
	}
}

func TestFromOptions_Engine(t *testing.T) {
	cfg, err := FromOptions("events.parquet", "", map[string]any{"engine": "fastparquet"})
	require.NoError(t, err)
	assert.Equal(t, format.EngineFastParquet, cfg.Options.Parquet.Engine)
}

func TestFromOptions_Delimiter(t *testing.T) {
	tests := []struct {
		value string
		want  rune
	}{
		{",", ','},
		{"|", '|'},
		{`\t`, '\t'},
		{"tab", '\t'},
		{"\t", '\t'},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			cfg, err := FromOptions("data.csv", "", map[string]any{"delimiter": tt.value})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Options.CSV.Delimiter)
		})
	}
}

func TestFromOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts map[string]any
	}{
		{"unknown key", map[string]any{"chunksize": 1000}},
		{"negative sheet", map[string]any{"sheets": -1}},
		{"fractional sheet", map[string]any{"sheets": 1.5}},
		{"sheet of wrong type", map[string]any{"sheets": []any{true}}},
		{"long delimiter", map[string]any{"delimiter": "::"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromOptions("data.csv", "", tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfiguration)
		})
	}
}

func TestFromOptions_NilMap(t *testing.T) {
	cfg, err := FromOptions("data.csv", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "data.csv", cfg.Location)
}
