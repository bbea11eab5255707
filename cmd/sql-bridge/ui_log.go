package main

import (
	"sql-bridge/internal/config"
	"sql-bridge/internal/logger"
	"sql-bridge/internal/platform/paths"
)

// newUILogger logs the console's own events to ui.log, separate from the
// daemon's server log. Without a writable log directory it logs nowhere.
func newUILogger() logger.LoggerService {
	logPath, err := paths.UILogFilePath()
	if err != nil || logPath == "" {
		return logger.NewNop()
	}

	cfg := config.Default()
	cfg.Log.File = logPath
	log, err := logger.New(cfg)
	if err != nil {
		return logger.NewNop()
	}
	return log
}
