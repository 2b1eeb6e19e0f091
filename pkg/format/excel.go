package format

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/xuri/excelize/v2"
)

func init() {
	Register(core.FormatXLSX, parseExcel)
}

// parseExcel returns one table per requested worksheet, in request order,
// or every worksheet in workbook order when none are requested. The first
// row of each sheet is its header.
func parseExcel(ctx context.Context, data []byte, opts Options) ([]*core.Table, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, core.DataLoadingError(err, "Excel loading failed")
	}
	defer func() { _ = wb.Close() }()

	names, err := resolveSheets(wb.GetSheetList(), opts.Excel.Sheets)
	if err != nil {
		return nil, core.DataLoadingError(err, "Excel loading failed")
	}

	tables := make([]*core.Table, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, core.DataLoadingError(err, "Excel loading failed")
		}
		rows, err := wb.GetRows(name)
		if err != nil {
			return nil, core.DataLoadingError(err, "Excel loading failed: sheet %s", name)
		}
		t := sheetTable(rows)
		t.Name = name
		tables = append(tables, t)
	}
	return tables, nil
}

// resolveSheets maps requested sheets onto workbook sheet names.
// Names match case-insensitively, as Excel itself does.
func resolveSheets(available []string, requested []Sheet) ([]string, error) {
	if len(requested) == 0 {
		return available, nil
	}

	names := make([]string, 0, len(requested))
	for _, s := range requested {
		if s.Name == "" {
			if s.Index < 0 || s.Index >= len(available) {
				return nil, fmt.Errorf("%w: index %d (workbook has %d sheets)", core.ErrSheetNotFound, s.Index, len(available))
			}
			names = append(names, available[s.Index])
			continue
		}
		found := ""
		for _, a := range available {
			if strings.EqualFold(a, s.Name) {
				found = a
				break
			}
		}
		if found == "" {
			return nil, fmt.Errorf("%w: %q (available: %s)", core.ErrSheetNotFound, s.Name, strings.Join(available, ", "))
		}
		names = append(names, found)
	}
	return names, nil
}

// sheetTable types a sheet's rows. excelize trims trailing empty cells, so
// short rows are padded with nulls; rows wider than the header get extra
// unnamed columns.
func sheetTable(rows [][]string) *core.Table {
	if len(rows) == 0 {
		return core.NewTable()
	}
	header := rows[0]
	width := len(header)
	for _, r := range rows[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	for len(header) < width {
		header = append(header, "")
	}
	return textTable(header, rows[1:])
}
