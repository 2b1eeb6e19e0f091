package format

import (
	"bytes"
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	arrowparquet "github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestParquet writes a small four-column file with one null name.
func writeTestParquet(t *testing.T) []byte {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "amount", Type: arrow.PrimitiveTypes.Float64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "active", Type: arrow.FixedWidthTypes.Boolean},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.Float64Builder).AppendValues([]float64{1.5, 2.5, 3.5}, nil)
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"a", "", "c"}, []bool{true, false, true})
	b.Field(3).(*array.BooleanBuilder).AppendValues([]bool{true, false, true}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	var buf bytes.Buffer
	w, err := pqarrow.NewFileWriter(schema, &buf, arrowparquet.NewWriterProperties(), pqarrow.DefaultWriterProps())
	require.NoError(t, err)
	require.NoError(t, w.Write(rec))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestParseParquet_Engines(t *testing.T) {
	data := writeTestParquet(t)

	wantRows := [][]any{
		{int64(1), 1.5, "a", true},
		{int64(2), 2.5, nil, false},
		{int64(3), 3.5, "c", true},
	}
	wantTypes := []core.DataType{core.TypeInt, core.TypeFloat, core.TypeString, core.TypeBool}

	for _, engine := range []ParquetEngine{"", EngineAuto, EnginePyArrow, EngineFastParquet} {
		t.Run(string(engineName(engine)), func(t *testing.T) {
			tbl := parseOne(t, core.FormatParquet, data, Options{Parquet: ParquetOptions{Engine: engine}})

			assert.Equal(t, []string{"id", "amount", "name", "active"}, tbl.ColumnNames())
			for i, c := range tbl.Columns {
				assert.Equal(t, wantTypes[i], c.Type, "column %s", c.Name)
			}
			assert.Equal(t, wantRows, tbl.Rows)
			assert.Equal(t, 1, tbl.NullCount())
		})
	}
}

func TestParseParquet_InvalidEngine(t *testing.T) {
	// Engine validation must fail before the bytes are looked at.
	_, err := Parse(context.Background(), core.FormatParquet, nil, Options{Parquet: ParquetOptions{Engine: "polars"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidEngine)
	assert.ErrorIs(t, err, core.ErrDataLoading)
}

func TestParseParquet_Corrupt(t *testing.T) {
	for _, engine := range ParquetEngines() {
		t.Run(string(engine), func(t *testing.T) {
			_, err := Parse(context.Background(), core.FormatParquet, []byte("not a parquet file"),
				Options{Parquet: ParquetOptions{Engine: engine}})
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrDataLoading)
			assert.Contains(t, err.Error(), "Parquet loading failed")
			assert.Contains(t, err.Error(), string(engine))
		})
	}
}
