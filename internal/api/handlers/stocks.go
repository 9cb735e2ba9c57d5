package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/store"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// StockHandler handles stock record API endpoints
type StockHandler struct {
	repo   *store.Repository
	logger *logger.Logger
}

// NewStockHandler creates a new stock handler
func NewStockHandler(repo *store.Repository, log *logger.Logger) *StockHandler {
	return &StockHandler{
		repo:   repo,
		logger: log,
	}
}

// AddStockRequest is the body of POST /stocks.
type AddStockRequest struct {
	Symbol string `json:"symbol"`
}

// List returns every tracked stock record
// GET /stocks
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list stocks")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve stocks")
		return
	}

	if records == nil {
		records = []contracts.StockRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

// Get returns one stock record
// GET /stocks/{symbol}
func (h *StockHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	rec, err := h.repo.Get(r.Context(), symbol)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "stock not found")
			return
		}
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to get stock")
		respondError(w, http.StatusInternalServerError, "Failed to retrieve stock")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// Add registers a new symbol for tracking
// POST /stocks
func (h *StockHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if !contracts.ValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "symbol must be 1-5 uppercase letters")
		return
	}

	if err := h.repo.Insert(r.Context(), symbol); err != nil {
		if errors.Is(err, contracts.ErrInvalidSymbol) {
			respondError(w, http.StatusBadRequest, "symbol must be 1-5 uppercase letters")
			return
		}
		h.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to add stock")
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.WithField("symbol", symbol).Info("Stock added")
	respondJSON(w, http.StatusCreated, map[string]string{"symbol": symbol})
}

// Remove deletes a stock record
// DELETE /stocks/{symbol}
func (h *StockHandler) Remove(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if err := h.repo.Delete(r.Context(), symbol); err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Failed to delete stock")
		respondError(w, http.StatusInternalServerError, "Failed to delete stock")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"symbol": symbol, "status": "deleted"})
}
