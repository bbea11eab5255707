// Package bridge exposes the connect / execute / close operations of a single
// database connection to a host, translating failures into *Error values.
package bridge

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"sql-bridge/internal/config"
	"sql-bridge/internal/db"
	"sql-bridge/internal/exec"
	"sql-bridge/internal/logger"
	"sql-bridge/internal/value"
)

// Bridge owns one connection slot. Every operation holds mu, so concurrent
// host calls run one after another on the handle.
type Bridge struct {
	mu   sync.Mutex
	mgr  *db.Manager
	exec *exec.Executor
	log  logger.LoggerService
}

func New(log logger.LoggerService, opt db.Options) *Bridge {
	if log == nil {
		log = logger.NewNop()
	}
	return &Bridge{
		mgr:  db.NewManager(opt),
		exec: exec.NewExecutor(),
		log:  log,
	}
}

// Connect opens the connection described by cfg. A second Connect while a
// connection is open fails; Close it first.
func (b *Bridge) Connect(ctx context.Context, cfg config.DBConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Connect(ctx, cfg)
	if err != nil {
		b.log.Error("connect failed", err, zap.String("driver", string(cfg.Driver)), zap.String("host", cfg.Host))
		return connectionError(err)
	}
	b.log.Success("connected", zap.String("descriptor", h.Descriptor()))
	return nil
}

func (b *Bridge) Execute(ctx context.Context, query string) (exec.Outcome, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return exec.Outcome{}, notConnected()
	}
	b.log.Debug("statement", zap.String("op", "execute"), zap.Int("length", len(query)))
	out, err := b.exec.Execute(ctx, h.Conn(), query)
	if err != nil {
		return exec.Outcome{}, b.executionFailed("execute", err)
	}
	return out, nil
}

func (b *Bridge) ExecuteQuery(ctx context.Context, query string) ([]value.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return nil, notConnected()
	}
	b.log.Debug("statement", zap.String("op", "executeQuery"), zap.Int("length", len(query)))
	rows, err := b.exec.Query(ctx, h.Conn(), query)
	if err != nil {
		return nil, b.executionFailed("executeQuery", err)
	}
	return rows, nil
}

func (b *Bridge) ExecuteUpdate(ctx context.Context, query string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return 0, notConnected()
	}
	b.log.Debug("statement", zap.String("op", "executeUpdate"), zap.Int("length", len(query)))
	n, err := b.exec.Update(ctx, h.Conn(), query)
	if err != nil {
		return 0, b.executionFailed("executeUpdate", err)
	}
	return n, nil
}

// Close releases the connection. Closing when nothing is open is an error.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mgr.Connected() {
		return notConnected()
	}
	h, _ := b.mgr.Handle()
	descriptor := h.Descriptor()
	if err := b.mgr.Close(); err != nil {
		b.log.Error("close failed", err, zap.String("descriptor", descriptor))
		return closeError(err)
	}
	b.log.Info("connection closed", zap.String("descriptor", descriptor))
	return nil
}

func (b *Bridge) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mgr.Connected()
}

// Descriptor returns the address of the open connection.
func (b *Bridge) Descriptor() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return "", false
	}
	return h.Descriptor(), true
}

// Tables lists the user tables of the connected database using the
// dialect's catalog query.
func (b *Bridge) Tables(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return nil, notConnected()
	}
	rows, err := b.exec.Query(ctx, h.Conn(), h.Dialect().TablesQuery())
	if err != nil {
		return nil, b.executionFailed("tables", err)
	}

	return firstColumn(rows), nil
}

func (b *Bridge) executionFailed(op string, err error) *Error {
	bErr := executionError(err)
	b.log.Error("statement failed", err, zap.String("op", op), zap.String("phase", string(bErr.Phase())))
	return bErr
}
