package bridge

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sql-bridge/internal/db"
	"sql-bridge/internal/value"
)

// DefaultRowLimit caps TableRows when the caller passes no limit.
const DefaultRowLimit = 200

// Databases lists the databases visible to the connected login.
func (b *Bridge) Databases(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return nil, notConnected()
	}
	rows, err := b.exec.Query(ctx, h.Conn(), h.Dialect().DatabasesQuery())
	if err != nil {
		return nil, b.executionFailed("databases", err)
	}
	return firstColumn(rows), nil
}

// UseDatabase switches the open connection to database name and returns
// the new descriptor.
func (b *Bridge) UseDatabase(ctx context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.mgr.Connected() {
		return "", notConnected()
	}
	h, err := b.mgr.UseDatabase(ctx, name)
	if err != nil {
		return "", b.executionFailed("use", err)
	}
	b.log.Info("database switched", zap.String("descriptor", h.Descriptor()))
	return h.Descriptor(), nil
}

// Columns describes table in column order.
func (b *Bridge) Columns(ctx context.Context, table string) ([]db.Column, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return nil, notConnected()
	}
	rows, err := b.exec.Query(ctx, h.Conn(), h.Dialect().ColumnsQuery(table))
	if err != nil {
		return nil, b.executionFailed("columns", err)
	}

	cols := make([]db.Column, 0, len(rows))
	for _, row := range rows {
		vals := make([]value.Value, 0, 4)
		row.Each(func(_ string, v value.Value) bool {
			vals = append(vals, v)
			return true
		})
		if len(vals) < 4 {
			continue
		}
		cols = append(cols, db.Column{
			Name:       vals[0].String(),
			Type:       vals[1].String(),
			Nullable:   flag(vals[2]),
			PrimaryKey: flag(vals[3]),
		})
	}
	return cols, nil
}

// TableRows reads up to limit rows of table; limit <= 0 means
// DefaultRowLimit.
func (b *Bridge) TableRows(ctx context.Context, table string, limit int) ([]value.Row, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return nil, notConnected()
	}
	if limit <= 0 {
		limit = DefaultRowLimit
	}
	rows, err := b.exec.Query(ctx, h.Conn(), h.Dialect().SelectRows(table, limit))
	if err != nil {
		return nil, b.executionFailed("rows", err)
	}
	return rows, nil
}

// InsertRow adds row to table through executeUpdate.
func (b *Bridge) InsertRow(ctx context.Context, table string, row value.Row) (int64, error) {
	return b.editRow(ctx, "insert", func(d db.Dialect) (string, error) {
		return db.InsertRow(d, table, row)
	})
}

// UpdateRow writes the columns of after that differ from before, matching
// the row by its primary key.
func (b *Bridge) UpdateRow(ctx context.Context, table string, columns []db.Column, before, after value.Row) (int64, error) {
	return b.editRow(ctx, "update", func(d db.Dialect) (string, error) {
		return db.UpdateRow(d, table, columns, before, after)
	})
}

func (b *Bridge) DeleteRow(ctx context.Context, table string, columns []db.Column, row value.Row) (int64, error) {
	return b.editRow(ctx, "delete", func(d db.Dialect) (string, error) {
		return db.DeleteRow(d, table, columns, row)
	})
}

func (b *Bridge) editRow(ctx context.Context, op string, build func(db.Dialect) (string, error)) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	h, err := b.mgr.Handle()
	if err != nil {
		return 0, notConnected()
	}
	stmt, err := build(h.Dialect())
	if err != nil {
		return 0, executionError(err)
	}
	b.log.Debug("statement", zap.String("op", op), zap.Int("length", len(stmt)))
	n, err := b.exec.Update(ctx, h.Conn(), stmt)
	if err != nil {
		return 0, b.executionFailed(op, err)
	}
	return n, nil
}

func firstColumn(rows []value.Row) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		row.Each(func(_ string, v value.Value) bool {
			names = append(names, v.String())
			return false
		})
	}
	return names
}

func flag(v value.Value) bool {
	switch v.Kind() {
	case value.KindInteger:
		return v.Int() != 0
	case value.KindBoolean:
		return v.Bool()
	case value.KindDouble:
		return v.Float() != 0
	case value.KindString:
		s := strings.TrimSpace(v.Str())
		return s == "1" || strings.EqualFold(s, "yes") || strings.EqualFold(s, "true")
	}
	return false
}
