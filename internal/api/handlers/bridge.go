package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"sql-bridge/internal/api/dto"
	"sql-bridge/internal/api/utils"
	"sql-bridge/internal/bridge"
	"sql-bridge/internal/config"
)

const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("empty body")

// NewConnectHandler opens the bridge connection. An empty body connects to
// the configured default server.
func NewConnectHandler(b *bridge.Bridge, defaultDB config.DBConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			utils.WriteMethodNotAllowed(w)
			return
		}

		var cfg config.DBConfig
		if err := decodeBody(w, r, &cfg); err != nil {
			if !errors.Is(err, errEmptyBody) {
				utils.WriteError(w, http.StatusBadRequest, "Invalid JSON body", "INVALID_JSON", nil)
				return
			}
			cfg = defaultDB
		}

		if err := b.Connect(r.Context(), cfg); err != nil {
			utils.WriteBridgeError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "success"})
	}
}

func NewExecuteHandler(b *bridge.Bridge) http.HandlerFunc {
	return queryHandler(func(w http.ResponseWriter, r *http.Request, query string) {
		out, err := b.Execute(r.Context(), query)
		if err != nil {
			utils.WriteBridgeError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.ExecuteResponse{Status: "success", Result: out})
	})
}

func NewExecuteQueryHandler(b *bridge.Bridge) http.HandlerFunc {
	return queryHandler(func(w http.ResponseWriter, r *http.Request, query string) {
		rows, err := b.ExecuteQuery(r.Context(), query)
		if err != nil {
			utils.WriteBridgeError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.QueryResponse{
			Status:   "success",
			RowCount: len(rows),
			Rows:     rows,
		})
	})
}

func NewExecuteUpdateHandler(b *bridge.Bridge) http.HandlerFunc {
	return queryHandler(func(w http.ResponseWriter, r *http.Request, query string) {
		n, err := b.ExecuteUpdate(r.Context(), query)
		if err != nil {
			utils.WriteBridgeError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.UpdateResponse{Status: "success", Affected: n})
	})
}

func NewCloseHandler(b *bridge.Bridge) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			utils.WriteMethodNotAllowed(w)
			return
		}
		if err := b.Close(); err != nil {
			utils.WriteBridgeError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, dto.StatusResponse{Status: "success"})
	}
}

// queryHandler decodes {"query": "..."} and hands the statement text, as
// sent, to fn.
func queryHandler(fn func(w http.ResponseWriter, r *http.Request, query string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			utils.WriteMethodNotAllowed(w)
			return
		}

		var req dto.QueryRequest
		if err := decodeBody(w, r, &req); err != nil {
			utils.WriteError(w, http.StatusBadRequest, "Invalid JSON body", "INVALID_JSON", nil)
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			utils.WriteError(w, http.StatusBadRequest, "SQL query is required", "SQL_QUERY_REQUIRED", nil)
			return
		}
		fn(w, r, req.Query)
	}
}

// decodeBody reads exactly one JSON value into dst. A body with no value
// yields errEmptyBody.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return ensureEOF(dec)
}

func ensureEOF(dec *json.Decoder) error {
	var extra any
	if err := dec.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return errors.New("extra data")
}
