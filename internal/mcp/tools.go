package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
)

// ToolDeps holds what the tool handlers share.
type ToolDeps struct {
	Bridge *bridge.Bridge
	// DefaultDB is used by connect when the call names no host.
	DefaultDB config.DBConfig
}

// HandleConnect opens the bridge connection.
func (d *ToolDeps) HandleConnect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := connectConfig(request, d.DefaultDB)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := d.Bridge.Connect(ctx, cfg); err != nil {
		return toolError(err), nil
	}
	descriptor, _ := d.Bridge.Descriptor()
	return mcp.NewToolResultText("connected to " + descriptor), nil
}

// HandleExecute runs any statement.
func (d *ToolDeps) HandleExecute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, res := requireSQL(request)
	if res != nil {
		return res, nil
	}
	out, err := d.Bridge.Execute(ctx, query)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(out)
}

// HandleExecuteQuery runs a statement and returns its rows.
func (d *ToolDeps) HandleExecuteQuery(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, res := requireSQL(request)
	if res != nil {
		return res, nil
	}
	rows, err := d.Bridge.ExecuteQuery(ctx, query)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(rows)
}

// HandleExecuteUpdate runs a statement and returns the affected row count.
func (d *ToolDeps) HandleExecuteUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, res := requireSQL(request)
	if res != nil {
		return res, nil
	}
	n, err := d.Bridge.ExecuteUpdate(ctx, query)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Affected rows: %d", n)), nil
}

func (d *ToolDeps) HandleClose(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := d.Bridge.Close(); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("connection closed"), nil
}

func (d *ToolDeps) HandleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tables, err := d.Bridge.Tables(ctx)
	if err != nil {
		return toolError(err), nil
	}

	var sb strings.Builder
	sb.WriteString("Tables:\n")
	for _, t := range tables {
		sb.WriteString("- ")
		sb.WriteString(t)
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (d *ToolDeps) HandleListDatabases(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dbs, err := d.Bridge.Databases(ctx)
	if err != nil {
		return toolError(err), nil
	}

	var sb strings.Builder
	sb.WriteString("Databases:\n")
	for _, name := range dbs {
		sb.WriteString("- ")
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// HandleUseDatabase switches the open connection to another database.
func (d *ToolDeps) HandleUseDatabase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(request.GetString("database", ""))
	if name == "" {
		return mcp.NewToolResultError("database parameter is required"), nil
	}
	descriptor, err := d.Bridge.UseDatabase(ctx, name)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("connected to " + descriptor), nil
}

// HandleDescribeTable returns the columns of a table as JSON.
func (d *ToolDeps) HandleDescribeTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := strings.TrimSpace(request.GetString("table", ""))
	if table == "" {
		return mcp.NewToolResultError("table parameter is required"), nil
	}
	cols, err := d.Bridge.Columns(ctx, table)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(cols)
}

func requireSQL(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	query := request.GetString("sql", "")
	if strings.TrimSpace(query) == "" {
		return "", mcp.NewToolResultError("sql parameter is required")
	}
	return query, nil
}

// connectConfig reads the connection arguments. With no host the default
// configuration is used as is.
func connectConfig(request mcp.CallToolRequest, def config.DBConfig) (config.DBConfig, error) {
	host := strings.TrimSpace(request.GetString("host", ""))
	if host == "" {
		return def, nil
	}

	cfg := config.DBConfig{
		Driver:   config.DBDriver(strings.TrimSpace(request.GetString("driver", ""))),
		Host:     host,
		Username: request.GetString("username", ""),
		Password: request.GetString("password", ""),
	}
	if cfg.Driver != "" && !config.IsKnownDriver(cfg.Driver) {
		return config.DBConfig{}, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	args := request.GetArguments()
	if _, ok := args["port"]; ok {
		port := request.GetInt("port", 0)
		if port <= 0 || port > 65535 {
			return config.DBConfig{}, errors.New("port must be between 1 and 65535")
		}
		cfg.Port = config.IntPtr(port)
	}
	if db := request.GetString("database", ""); db != "" {
		cfg.Database = config.StringPtr(db)
	}
	return cfg, nil
}

func toolError(err error) *mcp.CallToolResult {
	if kind := bridge.KindOf(err); kind != "" {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %v", kind, err))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
