// backend/src/handlers/trade_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/username/tradeledger/backend/src/logger"
	"github.com/username/tradeledger/backend/src/models"
	"github.com/username/tradeledger/backend/src/services"
	"github.com/username/tradeledger/backend/src/store"
	"github.com/username/tradeledger/backend/src/utils"
)

type TradeHandler struct {
	ledgerService services.LedgerService
	tradeParser   services.TradeParser // optional, external collaborator
}

func NewTradeHandler(ledgerService services.LedgerService, tradeParser services.TradeParser) *TradeHandler {
	return &TradeHandler{
		ledgerService: ledgerService,
		tradeParser:   tradeParser,
	}
}

// HandleListTrades returns a filtered, paginated trade listing.
func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	filter := store.TradeFilter{
		AssetType: models.AssetType(q.Get("assetType")),
		Symbol:    q.Get("symbol"),
		Side:      models.Side(q.Get("side")),
		DateFrom:  q.Get("dateFrom"),
		DateTo:    q.Get("dateTo"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	page, err := h.ledgerService.ListTrades(user, filter)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Failed to list trades", "error", err)
		utils.SendJSONError(w, "Failed to retrieve trades", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(page)
}

// HandleCreateTrade stores a new trade and rebuilds its partition's P&L.
func (h *TradeHandler) HandleCreateTrade(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	var input services.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	trade, err := h.ledgerService.CreateTrade(user, input)
	if err != nil {
		if errors.Is(err, models.ErrValidationFailed) {
			utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to create trade", "symbol", input.Symbol, "error", err)
		utils.SendJSONError(w, "Failed to create trade", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(trade)
}

// HandleDeleteTrade removes a trade and rebuilds its partition's P&L.
func (h *TradeHandler) HandleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.SendJSONError(w, "Invalid trade id", http.StatusBadRequest)
		return
	}

	if err := h.ledgerService.DeleteTrade(user, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.SendJSONError(w, "Trade not found", http.StatusNotFound)
			return
		}
		logger.ErrorFromContext(r.Context(), "Failed to delete trade", "tradeID", id, "error", err)
		utils.SendJSONError(w, "Failed to delete trade", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleParseTrade delegates a natural-language trade description to the
// configured parser. Without one, the endpoint is not implemented.
func (h *TradeHandler) HandleParseTrade(w http.ResponseWriter, r *http.Request) {
	if h.tradeParser == nil {
		utils.SendJSONError(w, services.ErrParserUnavailable.Error(), http.StatusNotImplemented)
		return
	}

	var req struct {
		Input string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		utils.SendJSONError(w, "trade description required", http.StatusBadRequest)
		return
	}

	parsed, err := h.tradeParser.ParseTrade(r.Context(), strings.TrimSpace(req.Input))
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Trade parsing failed", "error", err)
		utils.SendJSONError(w, "Failed to parse trade description", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(parsed)
}

// HandleRecalculateAll rebuilds every partition for the user. Intended for
// disaster recovery and migrations.
func (h *TradeHandler) HandleRecalculateAll(w http.ResponseWriter, r *http.Request) {
	user, ok := GetUserFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "user not found in context", http.StatusBadRequest)
		return
	}

	result, err := h.ledgerService.RecalculateAll(user)
	if err != nil {
		logger.ErrorFromContext(r.Context(), "Full recalculation failed", "error", err)
		utils.SendJSONError(w, "Failed to recalculate", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
