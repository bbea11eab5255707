// Package autostart runs the daemon under the Windows service manager and
// installs it there. Other platforms get ErrUnsupported.
package autostart

import (
	"context"
	"errors"

	"sql-bridge/internal/logger"
)

// DaemonServiceName is the service the daemon registers as.
const DaemonServiceName = "sql-bridged"

var ErrUnsupported = errors.New("windows service control is not supported on this OS")

// ServiceApp is what the service handler drives: Start must return once the
// app is serving, Errors reports a stop the app did not ask for.
type ServiceApp interface {
	Start() error
	Stop(ctx context.Context)
	Errors() <-chan error
	Logger() logger.LoggerService
}
