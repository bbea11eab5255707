package dto

import (
	"sql-bridge/internal/exec"
	"sql-bridge/internal/value"
)

type QueryRequest struct {
	Query string `json:"query"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Connected  bool   `json:"connected"`
	Descriptor string `json:"descriptor,omitempty"`
}

type ExecuteResponse struct {
	Status string       `json:"status"`
	Result exec.Outcome `json:"result"`
}

type QueryResponse struct {
	Status   string      `json:"status"`
	RowCount int         `json:"rowCount"`
	Rows     []value.Row `json:"rows"`
}

type UpdateResponse struct {
	Status   string `json:"status"`
	Affected int64  `json:"affected"`
}
