package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/structload/internal/testutil"
	"github.com/leapstack-labs/structload/pkg/adapter"
	"github.com/leapstack-labs/structload/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdapter_FileDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sales.db")

	cfg, err := adapter.ParseConnectionString("sqlite:///" + path)
	require.NoError(t, err)

	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(ctx, cfg))
	defer func() { _ = adp.Close() }()

	require.NoError(t, adp.Exec(ctx, `CREATE TABLE sales (id INTEGER, region TEXT, amount REAL)`))
	require.NoError(t, adp.Exec(ctx, `INSERT INTO sales VALUES (1, 'north', 10.5), (2, NULL, 20)`))

	rows, err := adp.Query(ctx, "SELECT id, region, amount FROM sales ORDER BY id")
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	tbl, err := adapter.ScanTable(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "region", "amount"}, tbl.ColumnNames())
	assert.Equal(t, core.TypeInt, tbl.Columns[0].Type)
	assert.Equal(t, core.TypeString, tbl.Columns[1].Type)
	assert.Equal(t, core.TypeFloat, tbl.Columns[2].Type)
	assert.Equal(t, [][]any{
		{int64(1), "north", 10.5},
		{int64(2), nil, 20.0},
	}, tbl.Rows)
}

func TestAdapter_InMemory(t *testing.T) {
	ctx := context.Background()
	for _, conn := range []string{"sqlite://", "sqlite3:///:memory:"} {
		t.Run(conn, func(t *testing.T) {
			cfg, err := adapter.ParseConnectionString(conn)
			require.NoError(t, err)

			adp := New(testutil.NewTestLogger(t))
			require.NoError(t, adp.Connect(ctx, cfg))
			defer func() { _ = adp.Close() }()

			// The table must be visible to the later query on the same database.
			require.NoError(t, adp.Exec(ctx, `CREATE TABLE t (x INTEGER)`))
			rows, err := adp.Query(ctx, "SELECT COUNT(*) FROM t")
			require.NoError(t, err)
			defer func() { _ = rows.Close() }()
			require.True(t, rows.Next())
		})
	}
}

func TestAdapter_QueryError(t *testing.T) {
	ctx := context.Background()
	cfg, err := adapter.ParseConnectionString("sqlite://")
	require.NoError(t, err)

	adp := New(testutil.NewTestLogger(t))
	require.NoError(t, adp.Connect(ctx, cfg))
	defer func() { _ = adp.Close() }()

	_, err = adp.Query(ctx, "SELECT * FROM missing_table")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute query")
}
