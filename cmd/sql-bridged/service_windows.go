//go:build windows

package main

import (
	"sql-bridge/internal/logger"
	"sql-bridge/internal/platform/autostart"
)

// runAsService hands control to the service manager when started by it.
func runAsService(app *serverApp) bool {
	isService, err := autostart.IsWindowsService()
	if err != nil || !isService {
		return false
	}

	if err := autostart.RunService(autostart.DaemonServiceName, app); err != nil {
		logger.NewStderr().Error("windows service failed", err)
	}
	return true
}
