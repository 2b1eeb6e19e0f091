package format

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/leapstack-labs/structload/pkg/core"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

func init() {
	Register(core.FormatCSV, parseCSV)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseCSV reads delimited text with a header row.
// Column types are inferred over the whole column, not just the first row.
func parseCSV(ctx context.Context, data []byte, opts Options) ([]*core.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.DataLoadingError(err, "CSV parsing error")
	}

	r, err := decodedReader(data, opts.CSV.Encoding)
	if err != nil {
		return nil, core.DataLoadingError(err, "CSV parsing error")
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	if opts.CSV.Delimiter != 0 {
		reader.Comma = opts.CSV.Delimiter
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, core.DataLoadingError(errors.New("no columns to parse from file"), "CSV parsing error")
	}
	if err != nil {
		return nil, core.DataLoadingError(err, "CSV parsing error")
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, core.DataLoadingError(err, "CSV parsing error")
		}
		if len(rec) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, core.DataLoadingError(
				fmt.Errorf("line %d: expected %d fields, saw %d", line, len(header), len(rec)),
				"CSV parsing error")
		}
		records = append(records, rec)
	}

	return []*core.Table{textTable(header, records)}, nil
}

// decodedReader strips a UTF-8 byte order mark and, when an encoding is
// named, transcodes the input to UTF-8.
func decodedReader(data []byte, encoding string) (io.Reader, error) {
	if encoding == "" {
		return bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)), nil
	}
	enc, err := htmlindex.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encoding, err)
	}
	return transform.NewReader(bytes.NewReader(data), enc.NewDecoder()), nil
}
