package exec

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"sql-bridge/internal/value"
)

func openSQLite(t *testing.T) *sql.Conn {
	t.Helper()
	pool, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "exec.db"))
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = pool.Close() })

	conn, err := pool.Conn(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestExecuteSelectLiteral(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)

	out, err := NewExecutor().Execute(ctx, conn, "SELECT 1 AS x")
	require.NoError(t, err)
	require.Equal(t, OutcomeRowSet, out.Kind)
	require.Len(t, out.Rows, 1)

	v, ok := out.Rows[0].Get("x")
	require.True(t, ok)
	assert.Equal(t, value.Integer(1), v)
}

func TestExecuteInsertReportsAffected(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	e := NewExecutor()

	out, err := e.Execute(ctx, conn, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	assert.Equal(t, OutcomeAffected, out.Kind)
	assert.Zero(t, out.Affected)

	out, err = e.Execute(ctx, conn, "INSERT INTO items (name) VALUES ('a'), ('b'), ('c')")
	require.NoError(t, err)
	assert.Equal(t, AffectedCount(3), out)

	n, err := e.Update(ctx, conn, "UPDATE items SET name = 'z' WHERE id = 99")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueryEmptyResult(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	e := NewExecutor()

	_, err := e.Update(ctx, conn, "CREATE TABLE empty_t (a INTEGER)")
	require.NoError(t, err)

	rows, err := e.Query(ctx, conn, "SELECT * FROM empty_t")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQueryColumnValues(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	e := NewExecutor()

	_, err := e.Update(ctx, conn, `CREATE TABLE t (
		id INTEGER,
		price REAL,
		note TEXT,
		payload BLOB,
		created DATETIME
	)`)
	require.NoError(t, err)
	_, err = e.Update(ctx, conn, "INSERT INTO t VALUES (7, 2.5, NULL, x'CAFE', '2024-01-02 03:04:05')")
	require.NoError(t, err)

	rows, err := e.Query(ctx, conn, "SELECT id, price, note, payload, created FROM t")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	row := rows[0]

	assert.Equal(t, []string{"id", "price", "note", "payload", "created"}, row.Columns())

	v, _ := row.Get("id")
	assert.Equal(t, value.Integer(7), v)
	v, _ = row.Get("price")
	assert.Equal(t, value.Double(2.5), v)

	v, ok := row.Get("note")
	require.True(t, ok)
	assert.True(t, v.IsNull())

	v, _ = row.Get("payload")
	assert.Equal(t, value.KindString, v.Kind())
	assert.Equal(t, "0xcafe", v.Str())

	v, _ = row.Get("created")
	assert.Equal(t, value.KindString, v.Kind())
	assert.Contains(t, v.Str(), "2024-01-02")
}

func TestQueryKeepsColumnOrderAndLastDuplicate(t *testing.T) {
	rows, err := NewExecutor().Query(context.Background(), openSQLite(t), "SELECT 3 AS c, 1 AS a, 2 AS b, 4 AS a")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, []string{"c", "a", "b"}, rows[0].Columns())
	v, _ := rows[0].Get("a")
	assert.Equal(t, value.Integer(4), v)
}

func TestStatementTextIsNotRewritten(t *testing.T) {
	rows, err := NewExecutor().Query(context.Background(), openSQLite(t), "SELECT '?' AS q, '$1' AS p")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	v, _ := rows[0].Get("q")
	assert.Equal(t, value.String("?"), v)
	v, _ = rows[0].Get("p")
	assert.Equal(t, value.String("$1"), v)
}

func TestStatementErrors(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	e := NewExecutor()

	_, err := e.Execute(ctx, conn, "SELECT * FROM missing_table")
	var stmtErr *StatementError
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, PhaseSubmit, stmtErr.Phase)
	assert.Equal(t, stmtErr.Err.Error(), err.Error())
	assert.True(t, strings.Contains(err.Error(), "missing_table"), err.Error())

	_, err = e.Update(ctx, conn, "INSERT INTO missing_table VALUES (1)")
	require.True(t, errors.As(err, &stmtErr))
	assert.Equal(t, PhaseSubmit, stmtErr.Phase)

	_, err = e.Execute(ctx, conn, "THIS IS NOT SQL")
	assert.Error(t, err)
}

func TestOutcomeJSON(t *testing.T) {
	row := value.NewRow()
	row.Set("x", value.Integer(1))

	b, err := json.Marshal(RowSet([]value.Row{row}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rows","rows":[{"x":1}]}`, string(b))

	b, err = json.Marshal(RowSet(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"rows","rows":[]}`, string(b))

	b, err = json.Marshal(AffectedCount(0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"affected","affected":0}`, string(b))
}

func TestExecuteCTEWriteReportsAffected(t *testing.T) {
	ctx := context.Background()
	conn := openSQLite(t)
	e := NewExecutor()

	_, err := e.Execute(ctx, conn, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)

	out, err := e.Execute(ctx, conn, "WITH src(n) AS (VALUES ('a'),('b'),('c')) INSERT INTO items (name) SELECT n FROM src")
	require.NoError(t, err)
	assert.Equal(t, AffectedCount(3), out)

	out, err = e.Execute(ctx, conn, "INSERT INTO items (name) VALUES ('d') RETURNING id")
	require.NoError(t, err)
	require.Equal(t, OutcomeRowSet, out.Kind)
	require.Len(t, out.Rows, 1)
	id, ok := out.Rows[0].Get("id")
	require.True(t, ok)
	assert.Equal(t, value.Integer(4), id)
}
