package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sql-bridge/internal/api"
	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
	"sql-bridge/internal/db"
	"sql-bridge/internal/logger"
	"sql-bridge/internal/platform/paths"
	"sql-bridge/internal/secrets"
)

type serverApp struct {
	configPath string

	cfg    config.Config
	logSvc logger.LoggerService
	bridge *bridge.Bridge
	srv    *http.Server
	errCh  chan error
}

func (a *serverApp) Start() error {
	bootstrapLog := logger.NewStderr()

	cfg, err := loadConfig(a.configPath)
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			bootstrapLog.Error("config not found; run sql-bridge --headless to create it", nil)
			return err
		}
		bootstrapLog.Error("failed to load config", err)
		return err
	}
	a.cfg = cfg

	logSvc, err := logger.New(cfg)
	if err != nil {
		bootstrapLog.Error("logger init failed; using stderr", err)
		logSvc = bootstrapLog
	}
	a.logSvc = logSvc

	password, err := secrets.DBPassword(cfg.DB)
	if err != nil {
		logSvc.Error("failed to load db password", err)
	}
	defaultDB := cfg.DB
	defaultDB.Password = password

	a.bridge = bridge.New(logSvc, db.DefaultOptions())

	srv, err := api.NewServer(cfg, api.ServerDeps{
		Bridge:    a.bridge,
		DefaultDB: defaultDB,
		Logger:    logSvc,
		Version:   version,
	})
	if err != nil {
		logSvc.Error("config validation error", err)
		a.Stop(context.Background())
		return err
	}
	a.srv = srv

	if cfg.ConnectOnStart {
		// a failed connect leaves the API up; hosts can retry via /api/connect
		if err := a.bridge.Connect(context.Background(), defaultDB); err != nil {
			logSvc.Warn("connect on start failed: " + err.Error())
		}
	}

	a.errCh = make(chan error, 1)
	go func() {
		a.errCh <- srv.ListenAndServe()
	}()

	logSvc.Info(fmt.Sprintf("sql-bridged listening on %s", srv.Addr))
	return nil
}

func (a *serverApp) Stop(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if a.srv != nil {
		if err := a.srv.Shutdown(ctx); err != nil && a.logSvc != nil {
			a.logSvc.Error("shutdown error", err)
		}
	}
	if a.bridge != nil && a.bridge.Connected() {
		_ = a.bridge.Close()
	}
	if a.logSvc != nil {
		_ = a.logSvc.Close()
	}
}

func (a *serverApp) Errors() <-chan error {
	return a.errCh
}

func (a *serverApp) Logger() logger.LoggerService {
	return a.logSvc
}

// loadConfig reads path, or the machine-wide config when path is empty.
// Either way SQLBRIDGE_* variables override the file.
func loadConfig(path string) (config.Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		p, err := paths.ConfigFilePath()
		if err != nil {
			return config.Config{}, err
		}
		path = p
	}
	return config.LoadFile(path)
}
