package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	mysqldriver "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"sql-bridge/internal/config"
)

// Dialect turns a DBConfig into what database/sql needs for one engine.
type Dialect interface {
	// Scheme is the descriptor scheme, e.g. "mysql" in mysql://host:3306/db.
	Scheme() string

	// DriverName is the name the driver registered with database/sql.
	DriverName() string

	// DSN combines the address and the credentials into the driver's
	// connection string.
	DSN(cfg config.DBConfig) (string, error)

	// UsesCredentials reports whether username/password are meaningful.
	UsesCredentials() bool

	// TablesQuery lists the user tables of the current database.
	TablesQuery() string

	// DatabasesQuery lists the databases visible to the login, one name
	// per row in the first column.
	DatabasesQuery() string

	// UseStatement switches the session to database name. An empty
	// statement means the engine binds the database at connect time and
	// the connection has to be reopened.
	UseStatement(name string) (string, error)

	// ColumnsQuery describes table: name, type, nullable (1/0) and
	// primary key (1/0), in column order.
	ColumnsQuery(table string) string

	// QuoteIdent quotes a table or column name.
	QuoteIdent(name string) string

	// QuoteString renders s as a string literal.
	QuoteString(s string) string

	// SelectRows reads at most limit rows of table.
	SelectRows(table string, limit int) string
}

var dialects = map[config.DBDriver]Dialect{
	config.DBDriverMySQL:    mysqlDialect{},
	config.DBDriverPostgres: postgresDialect{},
	config.DBDriverMSSQL:    mssqlDialect{},
	config.DBDriverSQLite:   sqliteDialect{},
}

// DialectFor returns the dialect of driver; empty selects MySQL.
func DialectFor(driver config.DBDriver) (Dialect, error) {
	if driver == "" {
		driver = config.DBDriverMySQL
	}
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver: %q", driver)
	}
	return d, nil
}

func hostPort(cfg config.DBConfig) string {
	if cfg.Port == nil {
		return cfg.Host
	}
	return net.JoinHostPort(cfg.Host, strconv.Itoa(*cfg.Port))
}

type mysqlDialect struct{}

func (mysqlDialect) Scheme() string        { return "mysql" }
func (mysqlDialect) DriverName() string    { return "mysql" }
func (mysqlDialect) UsesCredentials() bool { return true }

func (mysqlDialect) DSN(cfg config.DBConfig) (string, error) {
	c := mysqldriver.NewConfig()
	c.User = cfg.Username
	c.Passwd = cfg.Password
	c.Net = "tcp"
	// Without a port the driver falls back to 3306.
	c.Addr = hostPort(cfg)
	if cfg.Database != nil {
		c.DBName = *cfg.Database
	}
	c.AllowNativePasswords = true
	return c.FormatDSN(), nil
}

func (mysqlDialect) TablesQuery() string {
	return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'"
}

type postgresDialect struct{}

func (postgresDialect) Scheme() string        { return "postgres" }
func (postgresDialect) DriverName() string    { return "postgres" }
func (postgresDialect) UsesCredentials() bool { return true }

func (postgresDialect) DSN(cfg config.DBConfig) (string, error) {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   hostPort(cfg),
	}
	if cfg.Database != nil {
		u.Path = "/" + *cfg.Database
	}
	return u.String(), nil
}

func (postgresDialect) TablesQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'"
}

type mssqlDialect struct{}

func (mssqlDialect) Scheme() string        { return "sqlserver" }
func (mssqlDialect) DriverName() string    { return "sqlserver" }
func (mssqlDialect) UsesCredentials() bool { return true }

func (mssqlDialect) DSN(cfg config.DBConfig) (string, error) {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   hostPort(cfg),
	}
	q := url.Values{}
	if cfg.Database != nil {
		q.Set("database", *cfg.Database)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (mssqlDialect) TablesQuery() string {
	return "SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE'"
}

// sqliteDialect opens the file named by Host; ":memory:" is allowed.
type sqliteDialect struct{}

func (sqliteDialect) Scheme() string        { return "sqlite" }
func (sqliteDialect) DriverName() string    { return "sqlite" }
func (sqliteDialect) UsesCredentials() bool { return false }

func (sqliteDialect) DSN(cfg config.DBConfig) (string, error) {
	return cfg.Host, nil
}

func (sqliteDialect) TablesQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
}
