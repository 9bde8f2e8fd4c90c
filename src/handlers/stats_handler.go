// backend/src/handlers/stats_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/services"
	"github.com/username/tradeledger/backend/src/utils"
)

type StatsHandler struct {
	ledgerService services.LedgerService
}

func NewStatsHandler(ledgerService services.LedgerService) *StatsHandler {
	return &StatsHandler{ledgerService: ledgerService}
}

// HandleGetStats returns aggregated trading statistics for a user.
func (h *StatsHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	stats, err := h.ledgerService.GetStats(user)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to compute stats", "error", err)
		utils.SendJSONError(w, "Failed to retrieve statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
