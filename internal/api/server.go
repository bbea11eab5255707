package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"sql-bridge/internal/api/handlers"
	"sql-bridge/internal/api/middleware"
	"sql-bridge/internal/api/utils"
	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
	"sql-bridge/internal/logger"
	"sql-bridge/internal/mcp"
)

type ServerDeps struct {
	Bridge *bridge.Bridge
	// DefaultDB is used by /api/connect when the request has no body.
	DefaultDB config.DBConfig
	Logger    logger.LoggerService
	// Version is reported by the MCP endpoint.
	Version string
}

func NewServer(cfg config.Config, deps ServerDeps) (*http.Server, error) {
	handler, err := NewHandler(cfg, deps)
	if err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              strings.TrimSpace(cfg.APIListen),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}, nil
}

// NewHandler builds the authenticated /api routes and the MCP endpoint.
func NewHandler(cfg config.Config, deps ServerDeps) (http.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Bridge == nil {
		return nil, errors.New("bridge is required")
	}
	token := strings.TrimSpace(cfg.BearerToken)

	mux := http.NewServeMux()
	mux.Handle("/api/health", middleware.Auth(token, handlers.NewHealthHandler(deps.Bridge)))
	mux.Handle("/api/connect", middleware.Auth(token, handlers.NewConnectHandler(deps.Bridge, deps.DefaultDB)))
	mux.Handle("/api/execute", middleware.Auth(token, handlers.NewExecuteHandler(deps.Bridge)))
	mux.Handle("/api/execute-query", middleware.Auth(token, handlers.NewExecuteQueryHandler(deps.Bridge)))
	mux.Handle("/api/execute-update", middleware.Auth(token, handlers.NewExecuteUpdateHandler(deps.Bridge)))
	mux.Handle("/api/close", middleware.Auth(token, handlers.NewCloseHandler(deps.Bridge)))
	mux.Handle("/api/", middleware.Auth(token, http.HandlerFunc(notFoundHandler)))

	version := deps.Version
	if version == "" {
		version = "dev"
	}
	mcpSrv := mcp.NewServer(&mcp.ToolDeps{Bridge: deps.Bridge, DefaultDB: deps.DefaultDB}, version)
	mux.Handle(mcp.EndpointPath, middleware.Auth(token, mcp.NewHTTPHandler(mcpSrv)))

	return middleware.RequestID(middleware.Logging(deps.Logger, true, mux)), nil
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusNotFound, "Not found", "NOT_FOUND", nil)
}
