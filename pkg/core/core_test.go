package core

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		location string
		want     Format
	}{
		{"sales.csv", FormatCSV},
		{"SALES.CSV", FormatCSV},
		{"data/part-0.Parquet", FormatParquet},
		{"book.XLSX", FormatXLSX},
		{"records.json", FormatJSON},
		{"s3://bucket/path/to/file.parquet", FormatParquet},
		{"azure://container/blob.Json", FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got, err := DetectFormat(tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, Extension(tt.location), got.String())
		})
	}
}

func TestDetectFormat_Unsupported(t *testing.T) {
	for _, location := range []string{"notes.txt", "archive.tar.gz", "noext", "table.xls"} {
		t.Run(location, func(t *testing.T) {
			_, err := DetectFormat(location)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			assert.Contains(t, err.Error(), Extension(location))
			for _, tag := range SupportedFormats() {
				assert.Contains(t, err.Error(), tag)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	assert.False(t, f.MultiTable())

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.True(t, f.MultiTable())

	assert.Equal(t, []string{"csv", "json", "parquet", "xlsx"}, SupportedFormats())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		tag  string
		want Source
	}{
		{"", SourceLocal},
		{"local", SourceLocal},
		{"file", SourceLocal},
		{"S3", SourceS3},
		{"azure", SourceAzure},
		{"database", SourceDatabase},
		{"db", SourceDatabase},
		{"ftp", SourceLocal},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got := ParseSource(tt.tag)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want != SourceLocal, got.Remote())
		})
	}
}

func TestError_KindMatching(t *testing.T) {
	cause := errors.New("boom")

	cfgErr := ConfigurationError(fs.ErrNotExist, "data file not found: %s", "x.csv")
	assert.ErrorIs(t, cfgErr, ErrConfiguration)
	assert.NotErrorIs(t, cfgErr, ErrDataLoading)
	assert.ErrorIs(t, cfgErr, fs.ErrNotExist)
	assert.Equal(t, KindConfiguration, KindOf(cfgErr))
	assert.Equal(t, "data file not found: x.csv: file does not exist", cfgErr.Error())

	loadErr := DataLoadingError(cause, "failed to parse CSV")
	assert.ErrorIs(t, loadErr, ErrDataLoading)
	assert.ErrorIs(t, loadErr, cause)
	assert.Equal(t, "failed to parse CSV: boom", loadErr.Error())

	var e *Error
	require.ErrorAs(t, fmt.Errorf("outer: %w", loadErr), &e)
	assert.Equal(t, KindDataLoading, e.Kind)
	assert.Same(t, cause, e.Unwrap())
}

func TestDataLoadingError_NoDoubleWrap(t *testing.T) {
	inner := DataLoadingError(ErrInvalidEngine, "invalid Parquet engine: %s", "polars")
	outer := DataLoadingError(inner, "data loading failed")

	assert.Same(t, inner, outer)
	assert.Equal(t, "invalid Parquet engine: polars: invalid parquet engine", outer.Error())
	assert.Equal(t, Kind(0), KindOf(errors.New("plain")))
}

func TestTable(t *testing.T) {
	tbl := NewTable(Column{Name: "id", Type: TypeInt}, Column{Name: "name", Type: TypeString})
	assert.True(t, tbl.Empty())

	require.NoError(t, tbl.AppendRow([]any{int64(1), "a"}))
	require.NoError(t, tbl.AppendRow([]any{int64(2), nil}))
	require.Error(t, tbl.AppendRow([]any{int64(3)}))

	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 2, tbl.NumColumns())
	assert.False(t, tbl.Empty())
	assert.Equal(t, []string{"id", "name"}, tbl.ColumnNames())
	assert.Equal(t, 1, tbl.ColumnIndex("name"))
	assert.Equal(t, -1, tbl.ColumnIndex("missing"))
	assert.Equal(t, 1, tbl.NullCount())
	assert.Equal(t, map[string]int{"name": 1}, tbl.NullCountsByColumn())
	assert.Nil(t, NewTable(Column{Name: "id"}).NullCountsByColumn())

	ids, err := tbl.Column("id")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, ids)

	_, err = tbl.Column("missing")
	require.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeInt, TypeOf(int64(1)))
	assert.Equal(t, TypeFloat, TypeOf(1.5))
	assert.Equal(t, TypeBool, TypeOf(true))
	assert.Equal(t, TypeString, TypeOf("x"))
	assert.Equal(t, TypeTimestamp, TypeOf(time.Now()))
	assert.Equal(t, TypeBinary, TypeOf([]byte("x")))
	assert.Equal(t, TypeOther, TypeOf([]any{1}))
	assert.Equal(t, "float", TypeFloat.String())
}

func TestUnifyTypes(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   DataType
		after  []any
	}{
		{name: "all nil", values: []any{nil, nil}, want: TypeString, after: []any{nil, nil}},
		{name: "ints", values: []any{int64(1), nil, int64(2)}, want: TypeInt, after: []any{int64(1), nil, int64(2)}},
		{name: "ints widen to float", values: []any{int64(1), 2.5, int64(3)}, want: TypeFloat, after: []any{1.0, 2.5, 3.0}},
		{name: "mixed", values: []any{"a", int64(1)}, want: TypeOther, after: []any{"a", int64(1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnifyTypes(tt.values))
			assert.Equal(t, tt.after, tt.values)
		})
	}
}
