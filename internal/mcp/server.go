// Package mcp exposes the bridge operations as Model Context Protocol tools.
package mcp

import (
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	ServerName   = "sql-bridge"
	EndpointPath = "/mcp"
)

// NewServer registers the bridge tools on a fresh MCP server.
func NewServer(deps *ToolDeps, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		ServerName,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	sqlArg := mcp.WithString("sql", mcp.Description("The SQL statement, sent to the server unchanged"), mcp.Required())

	s.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Open the database connection. Without a host the configured connection is used."),
		mcp.WithString("driver", mcp.Description("mysql, postgres, mssql or sqlite (default mysql)")),
		mcp.WithString("host", mcp.Description("Server host, or the database file for sqlite")),
		mcp.WithNumber("port", mcp.Description("Server port")),
		mcp.WithString("database", mcp.Description("Database name")),
		mcp.WithString("username", mcp.Description("User name")),
		mcp.WithString("password", mcp.Description("Password")),
	), deps.HandleConnect)
	s.AddTool(mcp.NewTool("execute",
		mcp.WithDescription("Run any SQL statement. Returns rows for queries and the affected row count otherwise."),
		sqlArg,
	), deps.HandleExecute)
	s.AddTool(mcp.NewTool("execute_query",
		mcp.WithDescription("Run a SQL statement and return its rows as JSON."),
		sqlArg,
	), deps.HandleExecuteQuery)
	s.AddTool(mcp.NewTool("execute_update",
		mcp.WithDescription("Run a SQL statement and return the number of affected rows."),
		sqlArg,
	), deps.HandleExecuteUpdate)
	s.AddTool(mcp.NewTool("close",
		mcp.WithDescription("Close the database connection."),
	), deps.HandleClose)
	s.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("List the tables of the connected database."),
	), deps.HandleListTables)
	s.AddTool(mcp.NewTool("list_databases",
		mcp.WithDescription("List the databases visible to the connected login."),
	), deps.HandleListDatabases)
	s.AddTool(mcp.NewTool("use_database",
		mcp.WithDescription("Switch the open connection to another database."),
		mcp.WithString("database", mcp.Description("Database name"), mcp.Required()),
	), deps.HandleUseDatabase)
	s.AddTool(mcp.NewTool("describe_table",
		mcp.WithDescription("Describe the columns of a table: name, type, nullable and primary key."),
		mcp.WithString("table", mcp.Description("Table name"), mcp.Required()),
	), deps.HandleDescribeTable)

	return s
}

// NewHTTPHandler serves s over streamable HTTP at EndpointPath.
func NewHTTPHandler(s *mcpserver.MCPServer) http.Handler {
	return mcpserver.NewStreamableHTTPServer(s, mcpserver.WithEndpointPath(EndpointPath))
}

// ServeStdio serves s on stdin/stdout until stdin closes.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}
