package exec

import (
	"database/sql"

	"sql-bridge/internal/value"
)

// Cursor is the part of *sql.Rows the marshaler needs.
type Cursor interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// typedCursor is implemented by *sql.Rows; fakes may leave it out.
type typedCursor interface {
	ColumnTypes() ([]*sql.ColumnType, error)
}

// Marshal drains cursor into rows. Column metadata is read once up front.
// Nothing is returned on failure: a scan or iteration error discards every
// row read so far.
func Marshal(cursor Cursor) ([]value.Row, error) {
	cols, err := cursor.Columns()
	if err != nil {
		return nil, err
	}

	typeNames := make([]string, len(cols))
	if tc, ok := cursor.(typedCursor); ok {
		types, err := tc.ColumnTypes()
		if err != nil {
			return nil, err
		}
		for i := range types {
			if i < len(typeNames) {
				typeNames[i] = types[i].DatabaseTypeName()
			}
		}
	}

	rows := make([]value.Row, 0)
	values := make([]any, len(cols))
	scanArgs := make([]any, len(cols))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for cursor.Next() {
		for i := range values {
			values[i] = nil
		}
		if err := cursor.Scan(scanArgs...); err != nil {
			return nil, err
		}

		row := value.NewRow()
		for i, col := range cols {
			row.Set(col, value.CoerceColumn(values[i], typeNames[i]))
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return rows, nil
}
