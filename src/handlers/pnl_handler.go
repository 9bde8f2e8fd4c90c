// backend/src/handlers/pnl_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/services"
	"github.com/username/tradeledger/backend/src/store"
	"github.com/username/tradeledger/backend/src/utils"
)

type PnLHandler struct {
	ledgerService services.LedgerService
}

func NewPnLHandler(ledgerService services.LedgerService) *PnLHandler {
	return &PnLHandler{ledgerService: ledgerService}
}

// HandleGetPnL returns realized P&L records with summary statistics.
func (h *PnLHandler) HandleGetPnL(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	filter := store.PnLFilter{
		Symbol:    q.Get("symbol"),
		AssetType: models.AssetType(q.Get("assetType")),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
	}

	result, err := h.ledgerService.GetPnL(user, filter)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to query P&L records", "error", err)
		utils.SendJSONError(w, "Failed to retrieve P&L records", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
