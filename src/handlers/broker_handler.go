// backend/src/handlers/broker_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/processors"
	"github.com/username/tradeledger/backend/src/store"
	"github.com/username/tradeledger/backend/src/utils"
)

type BrokerHandler struct {
	db      *sql.DB
	brokers *store.BrokerStore
	feeCalc *processors.FeeCalculator
}

func NewBrokerHandler(db *sql.DB) *BrokerHandler {
	return &BrokerHandler{
		db:      db,
		brokers: store.NewBrokerStore(),
		feeCalc: processors.NewFeeCalculator(),
	}
}

// HandleListBrokers returns the broker fee schedule in display order.
func (h *BrokerHandler) HandleListBrokers(w http.ResponseWriter, r *http.Request) {
	brokers, err := h.brokers.List(h.db)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list brokers", "error", err)
		utils.SendJSONError(w, "Failed to retrieve brokers", http.StatusInternalServerError)
		return
	}
	if brokers == nil {
		brokers = []models.Broker{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(brokers)
}

// HandleGetDefaultBroker returns the user's default broker, if any.
func (h *BrokerHandler) HandleGetDefaultBroker(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	brokerID, broker, err := h.brokers.GetDefaultBroker(h.db, user)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to get default broker", "error", err)
		utils.SendJSONError(w, "Failed to retrieve default broker", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if brokerID == "" {
		json.NewEncoder(w).Encode(map[string]any{"brokerId": nil})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{"brokerId": brokerID, "broker": broker})
}

// HandleSetDefaultBroker upserts the user's default broker.
func (h *BrokerHandler) HandleSetDefaultBroker(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	var req struct {
		BrokerID string `json:"brokerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BrokerID == "" {
		utils.SendJSONError(w, "brokerId required", http.StatusBadRequest)
		return
	}

	if err := h.brokers.SetDefaultBroker(h.db, user, req.BrokerID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Broker not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to set default broker", "brokerID", req.BrokerID, "error", err)
		utils.SendJSONError(w, "Failed to set default broker", http.StatusInternalServerError)
		return
	}

	broker, _ := h.brokers.GetByID(h.db, req.BrokerID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"brokerId": req.BrokerID, "broker": broker})
}

// HandleCalculateFee computes commission and tax for prospective trade
// parameters without storing anything.
func (h *BrokerHandler) HandleCalculateFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BrokerID  string           `json:"brokerId"`
		AssetType models.AssetType `json:"assetType"`
		Price     float64          `json:"price"`
		Quantity  float64          `json:"quantity"`
		Side      models.Side      `json:"side"`
		Symbol    string           `json:"symbol"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.BrokerID == "" || !req.AssetType.Valid() || !req.Side.Valid() || req.Price <= 0 || req.Quantity <= 0 {
		utils.SendJSONError(w, "brokerId, assetType, side, positive price and quantity required", http.StatusBadRequest)
		return
	}

	broker, err := h.brokers.GetByID(h.db, req.BrokerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.ErrorFromContext(r.Context(), "Failed to look up broker", "brokerID", req.BrokerID, "error", err)
		utils.SendJSONError(w, "Failed to calculate fees", http.StatusInternalServerError)
		return
	}

	// Unknown broker yields zero/zero rather than failing
	result := h.feeCalc.Calculate(broker, req.AssetType, req.Price, req.Quantity, req.Side, req.Symbol)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
