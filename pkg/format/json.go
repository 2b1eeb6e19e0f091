package format

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/tidwall/gjson"
)

func init() {
	Register(core.FormatJSON, parseJSON)
}

// errUnresolvableShape is returned for JSON that matches no known layout.
var errUnresolvableShape = errors.New("cannot resolve JSON layout into a table")

// parseJSON detects the document layout and builds a table from it.
// Recognised layouts:
//
//	records  [{"a": 1, "b": 2}, ...]
//	values   [[1, 2], ...]                       columns named "0", "1", ...
//	split    {"columns": [...], "data": [[...]]}
//	columns  {"a": {"0": 1, "1": 2}, ...}        keys of inner objects are row labels
//	lists    {"a": [1, 2], "b": [3, 4]}
//
// Key order in the document is preserved.
func parseJSON(ctx context.Context, data []byte, _ Options) ([]*core.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, core.DataLoadingError(err, "JSON parsing error")
	}
	if !gjson.ValidBytes(data) {
		return nil, core.DataLoadingError(errors.New("invalid JSON document"), "JSON parsing error")
	}

	doc := gjson.ParseBytes(data)
	var (
		t   *core.Table
		err error
	)
	switch {
	case doc.IsArray():
		t, err = jsonArrayTable(doc.Array())
	case doc.IsObject():
		t, err = jsonObjectTable(doc)
	default:
		err = errUnresolvableShape
	}
	if err != nil {
		return nil, core.DataLoadingError(err, "JSON parsing error")
	}
	return []*core.Table{t}, nil
}

func jsonArrayTable(items []gjson.Result) (*core.Table, error) {
	if len(items) == 0 {
		return core.NewTable(), nil
	}

	cs := newColumnSet(len(items))
	switch {
	case allJSON(items, gjson.Result.IsObject):
		for r, item := range items {
			item.ForEach(func(key, value gjson.Result) bool {
				cs.set(key.String(), r, jsonValue(value))
				return true
			})
		}

	case allJSON(items, gjson.Result.IsArray):
		width := 0
		for _, item := range items {
			if n := len(item.Array()); n > width {
				width = n
			}
		}
		for c := 0; c < width; c++ {
			cs.ensure(strconv.Itoa(c))
		}
		for r, item := range items {
			for c, v := range item.Array() {
				cs.cols[c][r] = jsonValue(v)
			}
		}

	default:
		for r, item := range items {
			cs.set("0", r, jsonValue(item))
		}
	}
	return cs.table(), nil
}

func jsonObjectTable(doc gjson.Result) (*core.Table, error) {
	if cols, data := doc.Get("columns"), doc.Get("data"); cols.IsArray() && data.IsArray() {
		return jsonSplitTable(cols.Array(), data.Array())
	}

	var (
		entries []gjson.Result
		keys    []string
	)
	doc.ForEach(func(key, value gjson.Result) bool {
		keys = append(keys, key.String())
		entries = append(entries, value)
		return true
	})
	if len(entries) == 0 {
		return core.NewTable(), nil
	}

	switch {
	case allJSON(entries, gjson.Result.IsObject):
		// Row labels are the union of inner keys, in first-seen order.
		labels := make(map[string]int)
		for _, e := range entries {
			e.ForEach(func(key, _ gjson.Result) bool {
				if _, ok := labels[key.String()]; !ok {
					labels[key.String()] = len(labels)
				}
				return true
			})
		}
		cs := newColumnSet(len(labels))
		for i, e := range entries {
			cs.ensure(keys[i])
			e.ForEach(func(key, value gjson.Result) bool {
				cs.set(keys[i], labels[key.String()], jsonValue(value))
				return true
			})
		}
		return cs.table(), nil

	case allJSON(entries, gjson.Result.IsArray):
		height := 0
		for _, e := range entries {
			if n := len(e.Array()); n > height {
				height = n
			}
		}
		cs := newColumnSet(height)
		for i, e := range entries {
			cs.ensure(keys[i])
			for r, v := range e.Array() {
				cs.set(keys[i], r, jsonValue(v))
			}
		}
		return cs.table(), nil

	default:
		return nil, fmt.Errorf("%w: object values must all be objects or all be arrays", errUnresolvableShape)
	}
}

func jsonSplitTable(cols, data []gjson.Result) (*core.Table, error) {
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.String()
	}
	cs := newColumnSet(len(data))
	pos := make([]int, len(header))
	for c, h := range columnNames(header) {
		pos[c] = cs.ensure(h)
	}
	for r, row := range data {
		if !row.IsArray() {
			return nil, fmt.Errorf("%w: split data row %d is not an array", errUnresolvableShape, r)
		}
		values := row.Array()
		if len(values) > len(header) {
			return nil, fmt.Errorf("%w: split data row %d has %d values for %d columns", errUnresolvableShape, r, len(values), len(header))
		}
		for c, v := range values {
			cs.cols[pos[c]][r] = jsonValue(v)
		}
	}
	return cs.table(), nil
}

// =============================================================================
// helpers
// =============================================================================

// columnSet accumulates named columns of a fixed height in first-seen order.
type columnSet struct {
	height int
	names  []string
	index  map[string]int
	cols   [][]any
}

func newColumnSet(height int) *columnSet {
	return &columnSet{height: height, index: make(map[string]int)}
}

// ensure adds a column of null cells if name is new and returns its position.
func (cs *columnSet) ensure(name string) int {
	if i, ok := cs.index[name]; ok {
		return i
	}
	cs.index[name] = len(cs.names)
	cs.names = append(cs.names, name)
	cs.cols = append(cs.cols, make([]any, cs.height))
	return len(cs.names) - 1
}

func (cs *columnSet) set(name string, row int, v any) {
	cs.cols[cs.ensure(name)][row] = v
}

func (cs *columnSet) table() *core.Table {
	cols := make([]core.Column, len(cs.names))
	for i, name := range cs.names {
		cols[i] = core.Column{Name: name, Type: core.UnifyTypes(cs.cols[i])}
	}
	t := core.NewTable(cols...)
	t.Rows = make([][]any, cs.height)
	for r := range t.Rows {
		row := make([]any, len(cols))
		for c := range cols {
			row[c] = cs.cols[c][r]
		}
		t.Rows[r] = row
	}
	return t
}

func allJSON(items []gjson.Result, pred func(gjson.Result) bool) bool {
	for _, it := range items {
		if !pred(it) {
			return false
		}
	}
	return true
}

// jsonValue converts a scalar to its Go value. Nested objects and arrays
// are decoded into maps and slices.
func jsonValue(v gjson.Result) any {
	switch v.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return v.Str
	case gjson.Number:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n
		}
		return v.Num
	default:
		var nested any
		if err := gojson.Unmarshal([]byte(v.Raw), &nested); err != nil {
			return v.Raw
		}
		return nested
	}
}
