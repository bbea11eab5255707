package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"sql-bridge/internal/bridge"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details,omitempty"`
}

var bridgeCodes = map[bridge.Kind]string{
	bridge.KindNotConnected: "NOT_CONNECTED",
	bridge.KindConnection:   "CONNECTION_ERROR",
	bridge.KindExecution:    "EXECUTION_ERROR",
	bridge.KindClose:        "CLOSE_ERROR",
}

func WriteError(w http.ResponseWriter, status int, message, code string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	WriteJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

// WriteBridgeError writes a bridge failure with its class code as the HTTP
// status and the driver message as the error text.
func WriteBridgeError(w http.ResponseWriter, err error) {
	var bErr *bridge.Error
	if !errors.As(err, &bErr) {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR", nil)
		return
	}

	var details map[string]any
	if phase := bErr.Phase(); phase != "" {
		details = map[string]any{"phase": string(phase)}
	}
	WriteError(w, bErr.Code, bErr.Message, bridgeCodes[bErr.Kind], details)
}

func WriteMethodNotAllowed(w http.ResponseWriter) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED", nil)
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
