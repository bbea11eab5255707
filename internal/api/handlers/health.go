package handlers

import (
	"net/http"

	"sql-bridge/internal/api/dto"
	"sql-bridge/internal/api/utils"
	"sql-bridge/internal/bridge"
)

func NewHealthHandler(b *bridge.Bridge) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			utils.WriteMethodNotAllowed(w)
			return
		}

		descriptor, connected := b.Descriptor()
		utils.WriteJSON(w, http.StatusOK, dto.HealthResponse{
			Status:     "ok",
			Connected:  connected,
			Descriptor: descriptor,
		})
	}
}
