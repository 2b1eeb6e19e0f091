package core

import (
	"fmt"
	"time"
)

// =============================================================================
// Table
// =============================================================================

// DataType represents the type of data in a column.
type DataType int

const (
	// TypeString represents string data.
	TypeString DataType = iota
	// TypeInt represents integer data, held as int64.
	TypeInt
	// TypeFloat represents floating-point data, held as float64.
	TypeFloat
	// TypeBool represents boolean data.
	TypeBool
	// TypeTimestamp represents date and time data, held as time.Time.
	TypeTimestamp
	// TypeBinary represents binary data, held as []byte.
	TypeBinary
	// TypeOther represents values with no closer mapping (lists, structs).
	TypeOther
)

// String returns the string representation of a DataType.
func (dt DataType) String() string {
	switch dt {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeTimestamp:
		return "timestamp"
	case TypeBinary:
		return "binary"
	case TypeOther:
		return "other"
	default:
		return fmt.Sprintf("unknown(%d)", int(dt))
	}
}

// TypeOf returns the DataType matching a cell value.
func TypeOf(v any) DataType {
	switch v.(type) {
	case string:
		return TypeString
	case int64:
		return TypeInt
	case float64:
		return TypeFloat
	case bool:
		return TypeBool
	case time.Time:
		return TypeTimestamp
	case []byte:
		return TypeBinary
	default:
		return TypeOther
	}
}

// UnifyTypes returns the DataType shared by the non-nil values of a
// column. Mixed ints and floats widen to float, converting the int64
// cells in place. Any other mix is TypeOther. An all-nil column is
// TypeString.
func UnifyTypes(values []any) DataType {
	dt, seen := TypeString, false
	for _, v := range values {
		if v == nil {
			continue
		}
		vt := TypeOf(v)
		switch {
		case !seen:
			dt, seen = vt, true
		case dt == vt:
		case (dt == TypeInt && vt == TypeFloat) || (dt == TypeFloat && vt == TypeInt):
			dt = TypeFloat
		default:
			return TypeOther
		}
	}
	if dt == TypeFloat {
		for i, v := range values {
			if n, ok := v.(int64); ok {
				values[i] = float64(n)
			}
		}
	}
	return dt
}

// Column describes a named, typed table column.
type Column struct {
	Name string
	Type DataType
}

// Table is a two-dimensional result of named columns and rows.
//
// Cells hold nil (missing), int64, float64, bool, string, time.Time, []byte,
// or for nested data whatever the parser produced.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{Columns: columns}
}

// AppendRow appends a row. The row must have one cell per column.
func (t *Table) AppendRow(row []any) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column, top to bottom.
func (t *Table) Column(name string) ([]any, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// NullCountsByColumn returns the number of nil cells in each column that
// has any, keyed by column name. It is nil for a table with no nulls.
func (t *Table) NullCountsByColumn() map[string]int {
	var counts map[string]int
	for _, row := range t.Rows {
		for j, v := range row {
			if v != nil || j >= len(t.Columns) {
				continue
			}
			if counts == nil {
				counts = make(map[string]int)
			}
			counts[t.Columns[j].Name]++
		}
	}
	return counts
}

// NullCount returns the number of missing cells across all columns.
func (t *Table) NullCount() int {
	var n int
	for _, row := range t.Rows {
		for _, v := range row {
			if v == nil {
				n++
			}
		}
	}
	return n
}
