package format

import (
	"strconv"

	"github.com/leapstack-labs/structload/pkg/core"
)

// Options holds per-format parser settings.
// Only the block matching the parsed format is consulted.
type Options struct {
	CSV     CSVOptions
	Parquet ParquetOptions
	Excel   ExcelOptions
}

// Validate checks the options relevant to f. It performs no I/O, so callers
// can run it before fetching any bytes.
func (o Options) Validate(f core.Format) error {
	if f == core.FormatParquet {
		return o.Parquet.Validate()
	}
	return nil
}

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// Encoding is an IANA or WHATWG encoding name (e.g. "latin1").
	// Empty means UTF-8.
	Encoding string
}

// ParquetEngine selects the Parquet reader implementation.
type ParquetEngine string

// Supported Parquet engines. The names follow the pandas engine names so
// that existing options carry over; auto and pyarrow read through Apache
// Arrow, fastparquet through the row-group reader of parquet-go.
const (
	EngineAuto        ParquetEngine = "auto"
	EnginePyArrow     ParquetEngine = "pyarrow"
	EngineFastParquet ParquetEngine = "fastparquet"
)

// ParquetEngines lists the accepted engine names.
func ParquetEngines() []ParquetEngine {
	return []ParquetEngine{EngineAuto, EnginePyArrow, EngineFastParquet}
}

// ParquetOptions configures the Parquet parser.
type ParquetOptions struct {
	// Engine defaults to EngineAuto when empty.
	Engine ParquetEngine
}

// Validate rejects engines outside ParquetEngines.
func (o ParquetOptions) Validate() error {
	switch o.Engine {
	case "", EngineAuto, EnginePyArrow, EngineFastParquet:
		return nil
	}
	return core.DataLoadingError(core.ErrInvalidEngine,
		"invalid Parquet engine: %s (supported: %v)", o.Engine, ParquetEngines())
}

// Sheet addresses a worksheet by name, or by zero-based position when Name
// is empty.
type Sheet struct {
	Name  string
	Index int
}

// SheetByName addresses a worksheet by name.
func SheetByName(name string) Sheet {
	return Sheet{Name: name}
}

// SheetByIndex addresses a worksheet by zero-based position.
func SheetByIndex(i int) Sheet {
	return Sheet{Index: i}
}

// String returns the sheet name, or its index in brackets.
func (s Sheet) String() string {
	if s.Name != "" {
		return s.Name
	}
	return "[" + strconv.Itoa(s.Index) + "]"
}

// ExcelOptions configures the xlsx parser.
type ExcelOptions struct {
	// Sheets to load, in order. Empty loads every sheet in workbook order.
	Sheets []Sheet
}
