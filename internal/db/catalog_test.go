package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sql-bridge/internal/config"
)

func dialect(t *testing.T, driver config.DBDriver) Dialect {
	t.Helper()
	d, err := DialectFor(driver)
	require.NoError(t, err)
	return d
}

func TestQuoting(t *testing.T) {
	tests := []struct {
		driver config.DBDriver
		ident  string
		str    string
	}{
		{config.DBDriverMySQL, "`we``ird`", `'it''s \\ here'`},
		{config.DBDriverPostgres, `"we`+"`"+`ird"`, `'it''s \ here'`},
		{config.DBDriverMSSQL, "[we`ird]", `N'it''s \ here'`},
		{config.DBDriverSQLite, `"we` + "`" + `ird"`, `'it''s \ here'`},
	}
	for _, tt := range tests {
		t.Run(string(tt.driver), func(t *testing.T) {
			d := dialect(t, tt.driver)
			assert.Equal(t, tt.ident, d.QuoteIdent("we`ird"))
			assert.Equal(t, tt.str, d.QuoteString(`it's \ here`))
		})
	}

	assert.Equal(t, "[a]]b]", dialect(t, config.DBDriverMSSQL).QuoteIdent("a]b"))
	assert.Equal(t, `"a""b"`, dialect(t, config.DBDriverPostgres).QuoteIdent(`a"b`))
}

func TestUseStatement(t *testing.T) {
	stmt, err := dialect(t, config.DBDriverMySQL).UseStatement("shop")
	require.NoError(t, err)
	assert.Equal(t, "USE `shop`", stmt)

	stmt, err = dialect(t, config.DBDriverMSSQL).UseStatement("erp")
	require.NoError(t, err)
	assert.Equal(t, "USE [erp]", stmt)

	stmt, err = dialect(t, config.DBDriverPostgres).UseStatement("app")
	require.NoError(t, err)
	assert.Empty(t, stmt, "postgres reconnects")

	_, err = dialect(t, config.DBDriverSQLite).UseStatement("main")
	assert.ErrorIs(t, err, ErrUseUnsupported)
}

func TestCatalogQueries(t *testing.T) {
	assert.Equal(t, "SHOW DATABASES", dialect(t, config.DBDriverMySQL).DatabasesQuery())
	assert.Contains(t, dialect(t, config.DBDriverPostgres).DatabasesQuery(), "pg_database")
	assert.Contains(t, dialect(t, config.DBDriverMSSQL).DatabasesQuery(), "sys.databases")

	assert.Contains(t, dialect(t, config.DBDriverMySQL).ColumnsQuery("o'rders"), "TABLE_NAME = 'o''rders'")
	assert.Contains(t, dialect(t, config.DBDriverPostgres).ColumnsQuery("orders"), "c.table_name = 'orders'")
	assert.Contains(t, dialect(t, config.DBDriverMSSQL).ColumnsQuery("orders"), "c.TABLE_NAME = N'orders'")

	assert.Equal(t, "SELECT * FROM `orders` LIMIT 50", dialect(t, config.DBDriverMySQL).SelectRows("orders", 50))
	assert.Equal(t, "SELECT TOP (50) * FROM [orders]", dialect(t, config.DBDriverMSSQL).SelectRows("orders", 50))
}

func TestSQLiteCatalog(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultOptions())
	h, err := m.Connect(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer m.Close()

	_, err = h.Conn().ExecContext(ctx, `CREATE TABLE "order items" (id INTEGER PRIMARY KEY, sku TEXT NOT NULL, note TEXT)`)
	require.NoError(t, err)

	rows, err := h.Conn().QueryContext(ctx, h.Dialect().ColumnsQuery("order items"))
	require.NoError(t, err)
	defer rows.Close()

	type col struct {
		name, typ    string
		nullable, pk int
	}
	var got []col
	for rows.Next() {
		var c col
		require.NoError(t, rows.Scan(&c.name, &c.typ, &c.nullable, &c.pk))
		got = append(got, c)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []col{
		{"id", "INTEGER", 1, 1},
		{"sku", "TEXT", 0, 0},
		{"note", "TEXT", 1, 0},
	}, got)

	var name string
	require.NoError(t, h.Conn().QueryRowContext(ctx, h.Dialect().DatabasesQuery()).Scan(&name))
	assert.Equal(t, "main", name)
}

func TestUseDatabase(t *testing.T) {
	ctx := context.Background()
	m := NewManager(DefaultOptions())

	_, err := m.UseDatabase(ctx, "main")
	assert.ErrorIs(t, err, ErrNotConnected)

	h, err := m.Connect(ctx, sqliteConfig(t))
	require.NoError(t, err)
	defer m.Close()

	_, err = m.UseDatabase(ctx, " ")
	assert.Error(t, err)

	_, err = m.UseDatabase(ctx, "main")
	assert.ErrorIs(t, err, ErrUseUnsupported)

	got, err := m.Handle()
	require.NoError(t, err)
	assert.Same(t, h, got, "failed switch keeps the handle")
	require.NoError(t, got.Conn().PingContext(ctx))
}
