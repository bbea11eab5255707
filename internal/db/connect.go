package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"sql-bridge/internal/config"
)

var (
	// ErrNotConnected is returned when an operation needs the handle and
	// none is open.
	ErrNotConnected = errors.New("no open connection")

	// ErrAlreadyConnected rejects a second Connect while a handle is live.
	ErrAlreadyConnected = errors.New("connection already open; close it before connecting again")
)

type Options struct {
	PingTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		PingTimeout: 5 * time.Second,
	}
}

// Handle is the single live connection. The pool behind it is capped at one
// connection, which Conn pins for the handle's lifetime.
type Handle struct {
	pool       *sql.DB
	conn       *sql.Conn
	descriptor string
	dialect    Dialect
	cfg        config.DBConfig
}

// Conn is the connection every statement runs on.
func (h *Handle) Conn() *sql.Conn { return h.conn }

// Descriptor is the credential-free address, e.g. mysql://db:3306/shop.
func (h *Handle) Descriptor() string { return h.descriptor }

func (h *Handle) Dialect() Dialect { return h.dialect }

func (h *Handle) close() error {
	connErr := h.conn.Close()
	poolErr := h.pool.Close()
	return errors.Join(connErr, poolErr)
}

// Manager owns the one connection slot. It does no locking of its own;
// callers serialize access.
type Manager struct {
	opt    Options
	handle *Handle
}

func NewManager(opt Options) *Manager {
	if opt.PingTimeout <= 0 {
		opt.PingTimeout = DefaultOptions().PingTimeout
	}
	return &Manager{opt: opt}
}

// Connect opens the connection described by cfg and stores it as the live
// handle. Driver failures are returned unwrapped so their text reaches the
// caller verbatim.
func (m *Manager) Connect(ctx context.Context, cfg config.DBConfig) (*Handle, error) {
	if m.handle != nil {
		return nil, ErrAlreadyConnected
	}

	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if err := validate(cfg, dialect); err != nil {
		return nil, err
	}

	descriptor, err := Descriptor(cfg)
	if err != nil {
		return nil, err
	}
	dsn, err := dialect.DSN(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)

	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, m.opt.PingTimeout)
	defer cancel()

	conn, err := pool.Conn(pingCtx)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		_ = pool.Close()
		return nil, err
	}

	m.handle = &Handle{
		pool:       pool,
		conn:       conn,
		descriptor: descriptor,
		dialect:    dialect,
		cfg:        cfg,
	}
	return m.handle, nil
}

// UseDatabase points the live connection at database name. Engines with a
// USE statement switch in place; the others are reopened with the new
// database and the old handle is kept when that fails.
func (m *Manager) UseDatabase(ctx context.Context, name string) (*Handle, error) {
	h := m.handle
	if h == nil {
		return nil, ErrNotConnected
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("database name is required")
	}
	stmt, err := h.dialect.UseStatement(name)
	if err != nil {
		return nil, err
	}

	cfg := h.cfg
	cfg.Database = &name
	descriptor, err := Descriptor(cfg)
	if err != nil {
		return nil, err
	}

	if stmt != "" {
		if _, err := h.conn.ExecContext(ctx, stmt); err != nil {
			return nil, err
		}
		h.cfg = cfg
		h.descriptor = descriptor
		return h, nil
	}

	m.handle = nil
	next, err := m.Connect(ctx, cfg)
	if err != nil {
		m.handle = h
		return nil, err
	}
	_ = h.close()
	return next, nil
}

// Handle returns the live handle or ErrNotConnected.
func (m *Manager) Handle() (*Handle, error) {
	if m.handle == nil {
		return nil, ErrNotConnected
	}
	return m.handle, nil
}

func (m *Manager) Connected() bool {
	return m.handle != nil
}

// Close releases the live handle. The slot is cleared even when the driver
// reports an error, so a failed close is reported exactly once.
func (m *Manager) Close() error {
	if m.handle == nil {
		return ErrNotConnected
	}
	h := m.handle
	m.handle = nil
	return h.close()
}

func validate(cfg config.DBConfig, dialect Dialect) error {
	if strings.TrimSpace(cfg.Host) == "" {
		return errors.New("db.host is required")
	}
	if cfg.Port != nil && (*cfg.Port <= 0 || *cfg.Port > 65535) {
		return errors.New("db.port is invalid: " + strconv.Itoa(*cfg.Port))
	}
	if dialect.UsesCredentials() && strings.TrimSpace(cfg.Username) == "" {
		return errors.New("db.username is required")
	}
	return nil
}

// TestConnection opens and immediately closes a connection for cfg.
func TestConnection(ctx context.Context, cfg config.DBConfig) error {
	m := NewManager(DefaultOptions())
	if _, err := m.Connect(ctx, cfg); err != nil {
		return err
	}
	return m.Close()
}
