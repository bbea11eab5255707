package bridge

import (
	"errors"

	"sql-bridge/internal/db"
	"sql-bridge/internal/exec"
)

// Kind classifies a failure reported to the host.
type Kind string

const (
	KindConnection   Kind = "ConnectionError"
	KindNotConnected Kind = "NotConnectedError"
	KindExecution    Kind = "ExecutionError"
	KindClose        Kind = "CloseError"
)

// Numeric class codes: missing connection vs everything the driver reports.
const (
	CodeNotFound = 404
	CodeInternal = 500
)

const (
	notConnectedMessage = "No open connection"
	closeMessagePrefix  = "Error when close connection "
)

// Error is the structured failure every operation returns.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// Phase is the executor phase an ExecutionError came from, or "" for other
// kinds.
func (e *Error) Phase() exec.Phase {
	var stmtErr *exec.StatementError
	if errors.As(e.Err, &stmtErr) {
		return stmtErr.Phase
	}
	return ""
}

func notConnected() *Error {
	return &Error{
		Kind:    KindNotConnected,
		Code:    CodeNotFound,
		Message: notConnectedMessage,
		Err:     db.ErrNotConnected,
	}
}

func connectionError(err error) *Error {
	return &Error{Kind: KindConnection, Code: CodeInternal, Message: err.Error(), Err: err}
}

func executionError(err error) *Error {
	return &Error{Kind: KindExecution, Code: CodeInternal, Message: err.Error(), Err: err}
}

func closeError(err error) *Error {
	if errors.Is(err, db.ErrNotConnected) {
		return notConnected()
	}
	return &Error{Kind: KindClose, Code: CodeInternal, Message: closeMessagePrefix + err.Error(), Err: err}
}

// KindOf returns the kind of a bridge error, or "" when err is not one.
func KindOf(err error) Kind {
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Kind
	}
	return ""
}
