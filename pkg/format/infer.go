package format

import (
	"strconv"
	"strings"

	"github.com/leapstack-labs/structload/pkg/core"
)

// nullTokens are the cell spellings treated as missing, matching the
// defaults of the pandas CSV reader.
var nullTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var boolTokens = map[string]bool{
	"true": true, "True": true, "TRUE": true,
	"false": false, "False": false, "FALSE": false,
}

func isNullToken(s string) bool {
	_, ok := nullTokens[s]
	return ok
}

// textTable builds a typed table from a header row and string records.
// Records shorter than the header are padded with nulls; callers reject
// longer records before getting here.
func textTable(header []string, records [][]string) *core.Table {
	names := columnNames(header)
	cols := make([]core.Column, len(names))
	for j, name := range names {
		cols[j] = core.Column{Name: name, Type: inferTextType(records, j)}
	}

	t := core.NewTable(cols...)
	t.Rows = make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(cols))
		for j := range cols {
			if j < len(rec) {
				row[j] = convertText(rec[j], cols[j].Type)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// columnNames fills blank headers and suffixes duplicates (a, a.1, a.2).
// A suffixed name that is itself taken is suffixed again, so every
// returned name is unique.
func columnNames(header []string) []string {
	names := make([]string, len(header))
	counts := make(map[string]int, len(header))
	for j, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(j)
		}
		for n := counts[name]; n > 0; n = counts[name] {
			counts[name] = n + 1
			name = name + "." + strconv.Itoa(n)
		}
		counts[name] = 1
		names[j] = name
	}
	return names
}

// inferTextType picks the narrowest type that every non-null cell in
// column j parses as: int, then float, then bool, else string.
func inferTextType(records [][]string, j int) core.DataType {
	isInt, isFloat, isBool := true, true, true
	var seen bool
	for _, rec := range records {
		if j >= len(rec) || isNullToken(rec[j]) {
			continue
		}
		seen = true
		s := strings.TrimSpace(rec[j])
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := boolTokens[s]; !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return core.TypeString
		}
	}

	switch {
	case !seen:
		return core.TypeString
	case isInt:
		return core.TypeInt
	case isFloat:
		return core.TypeFloat
	case isBool:
		return core.TypeBool
	default:
		return core.TypeString
	}
}

func convertText(s string, dt core.DataType) any {
	if isNullToken(s) {
		return nil
	}
	trimmed := strings.TrimSpace(s)
	switch dt {
	case core.TypeInt:
		v, _ := strconv.ParseInt(trimmed, 10, 64)
		return v
	case core.TypeFloat:
		v, _ := strconv.ParseFloat(trimmed, 64)
		return v
	case core.TypeBool:
		return boolTokens[trimmed]
	default:
		return s
	}
}
