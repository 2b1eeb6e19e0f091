package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func salesTable() *core.Table {
	t := core.NewTable(
		core.Column{Name: "id", Type: core.TypeInt},
		core.Column{Name: "region", Type: core.TypeString},
	)
	t.Rows = [][]any{
		{int64(1), "EU"},
		{int64(2), nil},
		{int64(3), "NA, South"},
	}
	return t
}

func render(t *testing.T, mode string, isTTY bool, tables []*core.Table, limit int) string {
	t.Helper()
	var buf bytes.Buffer
	r := NewRendererWithTTY(&buf, mode, isTTY)
	require.NoError(t, r.Tables(tables, limit))
	return buf.String()
}

func TestRenderer_EffectiveMode(t *testing.T) {
	tests := []struct {
		mode  string
		isTTY bool
		want  Mode
	}{
		{"auto", true, ModeTable},
		{"auto", false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{"md", true, ModeMarkdown},
		{"json", true, ModeJSON},
		{"csv", false, ModeCSV},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			r := NewRendererWithTTY(new(bytes.Buffer), tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestRenderer_Table(t *testing.T) {
	out := render(t, "table", false, []*core.Table{salesTable()}, 0)

	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "REGION")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(3 rows)")
}

func TestRenderer_Markdown(t *testing.T) {
	tbl := salesTable()
	tbl.Name = "Sheet1"
	out := render(t, "markdown", false, []*core.Table{tbl}, 0)

	assert.Contains(t, out, "## Sheet1")
	assert.Contains(t, out, "| id | region |")
	assert.Contains(t, out, "| 1 | EU |")
}

func TestRenderer_CSV(t *testing.T) {
	out := render(t, "csv", false, []*core.Table{salesTable()}, 0)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,region", lines[0])
	assert.Equal(t, "2,", lines[2])
	assert.Equal(t, `3,"NA, South"`, lines[3])
}

func TestRenderer_Limit(t *testing.T) {
	out := render(t, "table", false, []*core.Table{salesTable()}, 2)
	assert.Contains(t, out, "(showing 2 of 3 rows)")
	assert.NotContains(t, out, "South")
}

func TestRenderer_JSON(t *testing.T) {
	t.Run("single table is a record list", func(t *testing.T) {
		out := render(t, "json", false, []*core.Table{salesTable()}, 0)

		var got []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 3)
		assert.Equal(t, "EU", got[0]["region"])
		assert.Nil(t, got[1]["region"])
	})

	t.Run("named tables", func(t *testing.T) {
		a, b := salesTable(), salesTable()
		a.Name, b.Name = "Sheet1", "Sheet2"
		out := render(t, "json", false, []*core.Table{a, b}, 1)

		var got []struct {
			Name string           `json:"name"`
			Rows []map[string]any `json:"rows"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "Sheet2", got[1].Name)
		assert.Len(t, got[1].Rows, 1)
	})
}

func TestRenderer_YAML(t *testing.T) {
	out := render(t, "yaml", false, []*core.Table{salesTable()}, 0)

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0]["id"])
	assert.Equal(t, "NA, South", got[2]["region"])
}

func TestFormatValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		v    any
		mode Mode
		want string
	}{
		{"nil in table", nil, ModeTable, "NULL"},
		{"nil in csv", nil, ModeCSV, ""},
		{"time", ts, ModeTable, "2024-03-01T12:00:00Z"},
		{"text bytes", []byte("abc"), ModeTable, "abc"},
		{"binary bytes", []byte{0xff, 0x00}, ModeTable, "0xff00"},
		{"float", 2.5, ModeTable, "2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatValue(tt.v, tt.mode))
		})
	}
}
