package adapter

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/structload/pkg/core"
)

// ScanTable materialises a result set as a table. It does not close rows.
//
// Column types come from the scanned values; columns with no non-null
// values fall back to the database type name. Drivers that return text
// as []byte (MySQL) have it converted using the database type name.
func ScanTable(rows *sql.Rows) (*core.Table, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	n := len(colTypes)
	dbTypes := make([]string, n)
	for i, ct := range colTypes {
		dbTypes[i] = strings.ToUpper(ct.DatabaseTypeName())
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, n)
		ptrs := make([]any, n)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v, dbTypes[i])
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	cols := make([]core.Column, n)
	column := make([]any, len(data))
	for i, ct := range colTypes {
		for r, row := range data {
			column[r] = row[i]
		}
		cols[i] = core.Column{Name: ct.Name(), Type: columnType(column, dbTypes[i])}
		for r, row := range data {
			row[i] = column[r]
		}
	}

	t := core.NewTable(cols...)
	t.Rows = data
	if t.Rows == nil {
		t.Rows = [][]any{}
	}
	return t, nil
}

func columnType(values []any, dbType string) core.DataType {
	for _, v := range values {
		if v != nil {
			return core.UnifyTypes(values)
		}
	}
	return typeFromName(dbType)
}

// normalizeValue maps driver values onto the cell types core.Table uses.
func normalizeValue(v any, dbType string) any {
	switch x := v.(type) {
	case []byte:
		return convertBytes(x, dbType)
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x > 1<<63-1 {
			return float64(x)
		}
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x
	default:
		return v
	}
}

func convertBytes(b []byte, dbType string) any {
	s := string(b)
	switch typeFromName(dbType) {
	case core.TypeBinary:
		return b
	case core.TypeInt:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	case core.TypeFloat:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case core.TypeBool:
		if bv, err := strconv.ParseBool(s); err == nil {
			return bv
		}
	}
	return s
}

// typeFromName maps a database type name (INT4, VARCHAR(20), BLOB, ...)
// onto a DataType. Unknown names map to TypeString.
func typeFromName(name string) core.DataType {
	name, _, _ = strings.Cut(name, "(")
	switch {
	case name == "":
		return core.TypeString
	case strings.Contains(name, "INT") && name != "POINT" && name != "INTERVAL":
		return core.TypeInt
	case strings.Contains(name, "FLOAT"), strings.Contains(name, "DOUBLE"), strings.Contains(name, "REAL"),
		strings.Contains(name, "DECIMAL"), strings.Contains(name, "NUMERIC"):
		return core.TypeFloat
	case strings.HasPrefix(name, "BOOL"):
		return core.TypeBool
	case strings.Contains(name, "TIMESTAMP"), strings.Contains(name, "DATE"), name == "TIME":
		return core.TypeTimestamp
	case strings.Contains(name, "BLOB"), strings.Contains(name, "BINARY"), name == "BYTEA":
		return core.TypeBinary
	default:
		return core.TypeString
	}
}
