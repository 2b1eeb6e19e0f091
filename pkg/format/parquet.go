package format

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/parquet-go/parquet-go"
	pqformat "github.com/parquet-go/parquet-go/format"
)

func init() {
	Register(core.FormatParquet, parseParquet)
}

// rowBufferSize is the number of rows read per call on the parquet-go path.
const rowBufferSize = 256

func parseParquet(ctx context.Context, data []byte, opts Options) ([]*core.Table, error) {
	if err := opts.Parquet.Validate(); err != nil {
		return nil, err
	}

	var (
		t   *core.Table
		err error
	)
	switch opts.Parquet.Engine {
	case EngineFastParquet:
		t, err = readParquetRows(ctx, data)
	default:
		t, err = readParquetArrow(ctx, data)
	}
	if err != nil {
		return nil, core.DataLoadingError(err, "Parquet loading failed (engine %s)", engineName(opts.Parquet.Engine))
	}
	return []*core.Table{t}, nil
}

func engineName(e ParquetEngine) ParquetEngine {
	if e == "" {
		return EngineAuto
	}
	return e
}

// =============================================================================
// Arrow engine
// =============================================================================

// readParquetArrow reads the whole file into an Arrow table and converts it.
func readParquetArrow(ctx context.Context, data []byte) (*core.Table, error) {
	pf, err := file.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer func() { _ = pf.Close() }()

	fr, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := fr.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	defer tbl.Release()

	return fromArrowTable(tbl), nil
}

// fromArrowTable copies an Arrow table into a core.Table.
func fromArrowTable(tbl arrow.Table) *core.Table {
	schema := tbl.Schema()
	nrows := int(tbl.NumRows())

	cols := make([]core.Column, len(schema.Fields()))
	for i, f := range schema.Fields() {
		cols[i] = core.Column{Name: f.Name, Type: arrowType(f.Type)}
	}

	t := core.NewTable(cols...)
	t.Rows = make([][]any, nrows)
	for r := range t.Rows {
		t.Rows[r] = make([]any, len(cols))
	}

	for c := range cols {
		r := 0
		for _, chunk := range tbl.Column(c).Data().Chunks() {
			for i := 0; i < chunk.Len(); i++ {
				t.Rows[r][c] = arrowValue(chunk, i)
				r++
			}
		}
	}
	return t
}

func arrowType(dt arrow.DataType) core.DataType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return core.TypeInt
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64:
		return core.TypeFloat
	case arrow.BOOL:
		return core.TypeBool
	case arrow.STRING, arrow.LARGE_STRING:
		return core.TypeString
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return core.TypeTimestamp
	case arrow.BINARY, arrow.LARGE_BINARY, arrow.FIXED_SIZE_BINARY:
		return core.TypeBinary
	case arrow.DICTIONARY:
		return arrowType(dt.(*arrow.DictionaryType).ValueType)
	default:
		return core.TypeOther
	}
}

func arrowValue(arr arrow.Array, i int) any {
	if arr.IsNull(i) {
		return nil
	}
	switch a := arr.(type) {
	case *array.Int8:
		return int64(a.Value(i))
	case *array.Int16:
		return int64(a.Value(i))
	case *array.Int32:
		return int64(a.Value(i))
	case *array.Int64:
		return a.Value(i)
	case *array.Uint8:
		return int64(a.Value(i))
	case *array.Uint16:
		return int64(a.Value(i))
	case *array.Uint32:
		return int64(a.Value(i))
	case *array.Uint64:
		if v := a.Value(i); v <= math.MaxInt64 {
			return int64(v)
		}
		return float64(a.Value(i))
	case *array.Float16:
		return float64(a.Value(i).Float32())
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Binary:
		return bytes.Clone(a.Value(i))
	case *array.LargeBinary:
		return bytes.Clone(a.Value(i))
	case *array.FixedSizeBinary:
		return bytes.Clone(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Date32:
		return a.Value(i).ToTime().UTC()
	case *array.Date64:
		return a.Value(i).ToTime().UTC()
	case *array.Dictionary:
		return arrowValue(a.Dictionary(), a.GetValueIndex(i))
	default:
		return arr.ValueStr(i)
	}
}

// =============================================================================
// parquet-go engine
// =============================================================================

// readParquetRows walks row groups with parquet-go's row reader. Only flat
// schemas are supported; repeated columns are rejected.
func readParquetRows(ctx context.Context, data []byte) (*core.Table, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	schema := f.Schema()
	paths := schema.Columns()
	cols := make([]core.Column, len(paths))
	nodes := make([]parquet.Node, len(paths))
	for i, path := range paths {
		leaf, ok := schema.Lookup(path...)
		if !ok {
			return nil, fmt.Errorf("column %s missing from schema", strings.Join(path, "."))
		}
		if leaf.MaxRepetitionLevel > 0 {
			return nil, fmt.Errorf("repeated column %s is not supported by the %s engine", strings.Join(path, "."), EngineFastParquet)
		}
		nodes[i] = leaf.Node
		cols[i] = core.Column{Name: strings.Join(path, "."), Type: parquetNodeType(leaf.Node)}
	}

	t := core.NewTable(cols...)
	t.Rows = make([][]any, 0, f.NumRows())
	buf := make([]parquet.Row, rowBufferSize)

	for _, rg := range f.RowGroups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readRowGroup(rg, buf, nodes, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func readRowGroup(rg parquet.RowGroup, buf []parquet.Row, nodes []parquet.Node, t *core.Table) error {
	rows := rg.Rows()
	defer func() { _ = rows.Close() }()

	for {
		n, err := rows.ReadRows(buf)
		for _, row := range buf[:n] {
			out := make([]any, len(nodes))
			for _, v := range row {
				c := v.Column()
				if c < 0 || c >= len(nodes) {
					continue
				}
				out[c] = parquetValue(v, nodes[c])
			}
			t.Rows = append(t.Rows, out)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read rows: %w", err)
		}
	}
}

func parquetNodeType(n parquet.Node) core.DataType {
	typ := n.Type()
	lt := typ.LogicalType()
	switch typ.Kind() {
	case parquet.Boolean:
		return core.TypeBool
	case parquet.Int32:
		if lt != nil && lt.Date != nil {
			return core.TypeTimestamp
		}
		return core.TypeInt
	case parquet.Int64:
		if lt != nil && lt.Timestamp != nil {
			return core.TypeTimestamp
		}
		return core.TypeInt
	case parquet.Float, parquet.Double:
		return core.TypeFloat
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if isTextual(lt) {
			return core.TypeString
		}
		return core.TypeBinary
	default:
		return core.TypeOther
	}
}

func parquetValue(v parquet.Value, n parquet.Node) any {
	if v.IsNull() {
		return nil
	}
	lt := n.Type().LogicalType()
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		if lt != nil && lt.Date != nil {
			return time.Unix(int64(v.Int32())*86400, 0).UTC()
		}
		return int64(v.Int32())
	case parquet.Int64:
		if lt != nil && lt.Timestamp != nil {
			return timestampValue(v.Int64(), lt.Timestamp.Unit.Millis != nil, lt.Timestamp.Unit.Micros != nil)
		}
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	case parquet.ByteArray, parquet.FixedLenByteArray:
		if isTextual(lt) {
			return string(v.ByteArray())
		}
		return bytes.Clone(v.ByteArray())
	default:
		return fmt.Sprintf("%v", v.Int96())
	}
}

func timestampValue(v int64, millis, micros bool) time.Time {
	switch {
	case millis:
		return time.UnixMilli(v).UTC()
	case micros:
		return time.UnixMicro(v).UTC()
	default:
		return time.Unix(0, v).UTC()
	}
}

// isTextual reports whether a byte array column holds UTF-8 text.
func isTextual(lt *pqformat.LogicalType) bool {
	return lt != nil && (lt.UTF8 != nil || lt.Enum != nil)
}
