package db

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUseUnsupported is returned by engines that have no notion of switching
// databases on an open connection.
var ErrUseUnsupported = errors.New("switching databases is not supported by this driver")

// Column describes one column of a table.
type Column struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Nullable   bool   `json:"nullable"`
	PrimaryKey bool   `json:"primaryKey"`
}

func quoteWith(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}

func singleQuoted(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func limitSelect(d Dialect, table string, limit int) string {
	return "SELECT * FROM " + d.QuoteIdent(table) + " LIMIT " + strconv.Itoa(limit)
}

func (mysqlDialect) DatabasesQuery() string { return "SHOW DATABASES" }

func (d mysqlDialect) UseStatement(name string) (string, error) {
	return "USE " + d.QuoteIdent(name), nil
}

func (d mysqlDialect) ColumnsQuery(table string) string {
	return "SELECT COLUMN_NAME, DATA_TYPE, " +
		"CASE WHEN IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS nullable, " +
		"CASE WHEN COLUMN_KEY = 'PRI' THEN 1 ELSE 0 END AS primary_key " +
		"FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = " +
		d.QuoteString(table) + " ORDER BY ORDINAL_POSITION"
}

func (mysqlDialect) QuoteIdent(name string) string { return quoteWith(name, "`", "`") }

// QuoteString also escapes backslashes, which MySQL treats as escapes
// unless NO_BACKSLASH_ESCAPES is set.
func (mysqlDialect) QuoteString(s string) string {
	return singleQuoted(strings.ReplaceAll(s, `\`, `\\`))
}

func (d mysqlDialect) SelectRows(table string, limit int) string {
	return limitSelect(d, table, limit)
}

func (postgresDialect) DatabasesQuery() string {
	return "SELECT datname FROM pg_database WHERE NOT datistemplate ORDER BY datname"
}

func (postgresDialect) UseStatement(string) (string, error) { return "", nil }

func (d postgresDialect) ColumnsQuery(table string) string {
	return "SELECT c.column_name, c.data_type, " +
		"CASE WHEN c.is_nullable = 'YES' THEN 1 ELSE 0 END AS nullable, " +
		"CASE WHEN EXISTS (SELECT 1 FROM information_schema.table_constraints tc " +
		"JOIN information_schema.key_column_usage k ON k.constraint_name = tc.constraint_name " +
		"AND k.table_schema = tc.table_schema AND k.table_name = tc.table_name " +
		"WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = c.table_schema " +
		"AND tc.table_name = c.table_name AND k.column_name = c.column_name) THEN 1 ELSE 0 END AS primary_key " +
		"FROM information_schema.columns c WHERE c.table_schema = current_schema() AND c.table_name = " +
		d.QuoteString(table) + " ORDER BY c.ordinal_position"
}

func (postgresDialect) QuoteIdent(name string) string { return quoteWith(name, `"`, `"`) }
func (postgresDialect) QuoteString(s string) string   { return singleQuoted(s) }

func (d postgresDialect) SelectRows(table string, limit int) string {
	return limitSelect(d, table, limit)
}

func (mssqlDialect) DatabasesQuery() string { return "SELECT name FROM sys.databases ORDER BY name" }

func (d mssqlDialect) UseStatement(name string) (string, error) {
	return "USE " + d.QuoteIdent(name), nil
}

func (d mssqlDialect) ColumnsQuery(table string) string {
	return "SELECT c.COLUMN_NAME, c.DATA_TYPE, " +
		"CASE WHEN c.IS_NULLABLE = 'YES' THEN 1 ELSE 0 END AS nullable, " +
		"CASE WHEN EXISTS (SELECT 1 FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc " +
		"JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON k.CONSTRAINT_NAME = tc.CONSTRAINT_NAME " +
		"AND k.TABLE_SCHEMA = tc.TABLE_SCHEMA AND k.TABLE_NAME = tc.TABLE_NAME " +
		"WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_SCHEMA = c.TABLE_SCHEMA " +
		"AND tc.TABLE_NAME = c.TABLE_NAME AND k.COLUMN_NAME = c.COLUMN_NAME) THEN 1 ELSE 0 END AS primary_key " +
		"FROM INFORMATION_SCHEMA.COLUMNS c WHERE c.TABLE_NAME = " +
		d.QuoteString(table) + " ORDER BY c.ORDINAL_POSITION"
}

func (mssqlDialect) QuoteIdent(name string) string { return quoteWith(name, "[", "]") }
func (mssqlDialect) QuoteString(s string) string   { return "N" + singleQuoted(s) }

func (d mssqlDialect) SelectRows(table string, limit int) string {
	return "SELECT TOP (" + strconv.Itoa(limit) + ") * FROM " + d.QuoteIdent(table)
}

func (sqliteDialect) DatabasesQuery() string {
	return "SELECT name FROM pragma_database_list ORDER BY seq"
}

func (sqliteDialect) UseStatement(string) (string, error) { return "", ErrUseUnsupported }

func (d sqliteDialect) ColumnsQuery(table string) string {
	return `SELECT name, type, CASE WHEN "notnull" = 0 THEN 1 ELSE 0 END AS nullable, CASE WHEN pk > 0 THEN 1 ELSE 0 END AS primary_key ` +
		"FROM pragma_table_info(" + d.QuoteString(table) + ") ORDER BY cid"
}

func (sqliteDialect) QuoteIdent(name string) string { return quoteWith(name, `"`, `"`) }
func (sqliteDialect) QuoteString(s string) string   { return singleQuoted(s) }

func (d sqliteDialect) SelectRows(table string, limit int) string {
	return limitSelect(d, table, limit)
}
