package exec

import (
	"context"
	"database/sql"
	"encoding/json"

	"sql-bridge/internal/value"
)

// Conn is satisfied by *sql.Conn. Statements are always sent without
// arguments, so the text reaches the server exactly as given.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Phase tells where a statement failed.
type Phase string

const (
	PhaseSubmit Phase = "submit"
	PhaseDrain  Phase = "drain"
)

// StatementError carries the driver error unchanged plus the phase it came
// from.
type StatementError struct {
	Phase Phase
	Err   error
}

func (e *StatementError) Error() string { return e.Err.Error() }
func (e *StatementError) Unwrap() error { return e.Err }

type OutcomeKind uint8

const (
	OutcomeRowSet OutcomeKind = iota + 1
	OutcomeAffected
)

// Outcome is the result of Execute: either a row set or an affected-row
// count, never both.
type Outcome struct {
	Kind     OutcomeKind
	Rows     []value.Row
	Affected int64
}

func RowSet(rows []value.Row) Outcome {
	if rows == nil {
		rows = []value.Row{}
	}
	return Outcome{Kind: OutcomeRowSet, Rows: rows}
}

func AffectedCount(n int64) Outcome {
	return Outcome{Kind: OutcomeAffected, Affected: n}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	switch o.Kind {
	case OutcomeRowSet:
		return json.Marshal(struct {
			Type string      `json:"type"`
			Rows []value.Row `json:"rows"`
		}{"rows", RowSet(o.Rows).Rows})
	default:
		return json.Marshal(struct {
			Type     string `json:"type"`
			Affected int64  `json:"affected"`
		}{"affected", o.Affected})
	}
}

type Executor struct {
	classifier *Classifier
}

func NewExecutor() *Executor {
	return &Executor{classifier: NewClassifier()}
}

// Execute runs any statement. Row-returning statements come back as a row
// set, everything else as the number of affected rows.
func (e *Executor) Execute(ctx context.Context, conn Conn, query string) (Outcome, error) {
	if e.classifier.ReturnsRows(query) {
		rows, err := e.Query(ctx, conn, query)
		if err != nil {
			return Outcome{}, err
		}
		return RowSet(rows), nil
	}

	n, err := e.Update(ctx, conn, query)
	if err != nil {
		return Outcome{}, err
	}
	return AffectedCount(n), nil
}

// Query runs a row-returning statement. A statement that yields no row set
// still runs; what comes back is then up to the driver, which for the
// supported drivers is an empty cursor and so an empty result.
func (e *Executor) Query(ctx context.Context, conn Conn, query string) ([]value.Row, error) {
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, &StatementError{Phase: PhaseSubmit, Err: err}
	}
	defer rows.Close()

	out, err := Marshal(rows)
	if err != nil {
		return nil, &StatementError{Phase: PhaseDrain, Err: err}
	}
	return out, nil
}

// Update runs a statement and returns the affected row count; 0 is a valid
// count.
func (e *Executor) Update(ctx context.Context, conn Conn, query string) (int64, error) {
	res, err := conn.ExecContext(ctx, query)
	if err != nil {
		return 0, &StatementError{Phase: PhaseSubmit, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StatementError{Phase: PhaseSubmit, Err: err}
	}
	return n, nil
}
