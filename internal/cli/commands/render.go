package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/structload/pkg/core"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Mode selects how tables are written.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"
	ModeTable    Mode = "table"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
	ModeYAML     Mode = "yaml"
)

// Renderer writes loaded tables in one output mode.
type Renderer struct {
	w     io.Writer
	mode  Mode
	isTTY bool
}

// NewRenderer creates a renderer for w. In auto mode a terminal gets a
// boxed table and anything else gets markdown.
func NewRenderer(w io.Writer, mode string) *Renderer {
	isTTY := false
	if f, ok := w.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(w, mode, isTTY)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(w io.Writer, mode string, isTTY bool) *Renderer {
	m := Mode(mode)
	switch m {
	case "":
		m = ModeAuto
	case "md":
		m = ModeMarkdown
	}
	return &Renderer{w: w, mode: m, isTTY: isTTY}
}

// EffectiveMode resolves auto to a concrete mode.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeTable
	}
	return ModeMarkdown
}

// Tables writes tables, showing at most limit rows of each when limit > 0.
func (r *Renderer) Tables(tables []*core.Table, limit int) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		return r.encodeJSON(tables, limit)
	case ModeYAML:
		return r.encodeYAML(tables, limit)
	}

	for i, t := range tables {
		if i > 0 {
			_, _ = fmt.Fprintln(r.w)
		}
		if err := r.writeTable(t, limit); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) writeTable(t *core.Table, limit int) error {
	mode := r.EffectiveMode()
	rows := limitRows(t.Rows, limit)

	tw := table.NewWriter()
	tw.SetOutputMirror(r.w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		out := make(table.Row, len(row))
		for i, v := range row {
			out[i] = formatValue(v, mode)
		}
		tw.AppendRow(out)
	}

	switch mode {
	case ModeCSV:
		tw.RenderCSV()
		return nil
	case ModeMarkdown:
		if t.Name != "" {
			_, _ = fmt.Fprintf(r.w, "## %s\n\n", t.Name)
		}
		tw.RenderMarkdown()
	default:
		if t.Name != "" {
			tw.SetTitle(t.Name)
		}
		tw.Render()
	}

	if len(rows) < len(t.Rows) {
		_, _ = fmt.Fprintf(r.w, "(showing %d of %d rows)\n", len(rows), len(t.Rows))
	} else {
		_, _ = fmt.Fprintf(r.w, "(%d rows)\n", len(t.Rows))
	}
	return nil
}

// namedRecords is the structured-output form of a table.
type namedRecords struct {
	Name string           `json:"name" yaml:"name"`
	Rows []map[string]any `json:"rows" yaml:"rows"`
}

// document returns the records of a single unnamed table, or a list of
// named record sets.
func document(tables []*core.Table, limit int) any {
	if len(tables) == 1 && tables[0].Name == "" {
		return records(tables[0], limit)
	}
	out := make([]namedRecords, len(tables))
	for i, t := range tables {
		out[i] = namedRecords{Name: t.Name, Rows: records(t, limit)}
	}
	return out
}

func records(t *core.Table, limit int) []map[string]any {
	rows := limitRows(t.Rows, limit)
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		rec := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			rec[c.Name] = row[j]
		}
		out[i] = rec
	}
	return out
}

func (r *Renderer) encodeJSON(tables []*core.Table, limit int) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(document(tables, limit))
}

func (r *Renderer) encodeYAML(tables []*core.Table, limit int) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(document(tables, limit)); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err := r.w.Write(buf.Bytes())
	return err
}

func limitRows(rows [][]any, limit int) [][]any {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func formatValue(v any, mode Mode) string {
	switch val := v.(type) {
	case nil:
		if mode == ModeCSV {
			return ""
		}
		return "NULL"
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		if utf8.Valid(val) {
			return string(val)
		}
		return fmt.Sprintf("0x%x", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
