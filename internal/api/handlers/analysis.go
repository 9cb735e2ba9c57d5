package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/buffett/backend/internal/analysis"
	"github.com/wonny/buffett/backend/internal/contracts"
	"github.com/wonny/buffett/backend/internal/integration"
	"github.com/wonny/buffett/backend/internal/source"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// AnalysisHandler handles integrated analysis API endpoints
type AnalysisHandler struct {
	engine   *integration.Engine
	analyzer *analysis.BatchAnalyzer
	market   *source.AlphaVantageSource
	analyst  source.DataSource
	logger   *logger.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	engine *integration.Engine,
	analyzer *analysis.BatchAnalyzer,
	market *source.AlphaVantageSource,
	analyst source.DataSource,
	log *logger.Logger,
) *AnalysisHandler {
	return &AnalysisHandler{
		engine:   engine,
		analyzer: analyzer,
		market:   market,
		analyst:  analyst,
		logger:   log,
	}
}

// GetIntegrated returns the unified, scored record for a symbol
// GET /api/analysis/{symbol}
func (h *AnalysisHandler) GetIntegrated(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	if !contracts.ValidSymbol(symbol) {
		respondError(w, http.StatusBadRequest, "symbol must be 1-5 uppercase letters")
		return
	}

	rec, err := h.engine.Integrate(r.Context(), symbol, h.market, h.analyst)
	if err != nil {
		h.logger.WithError(err).WithField("symbol", symbol).Error("Integration failed")
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// ValidateSymbol checks a symbol against the market source
// GET /api/validate/{symbol}
func (h *AnalysisHandler) ValidateSymbol(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])

	valid, reason := h.market.ValidateSymbol(r.Context(), symbol)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"symbol": symbol,
		"valid":  valid,
		"reason": reason,
	})
}

// AnalyzeAll runs the batch valuation pass over every tracked stock
// POST /analyze-stocks
func (h *AnalysisHandler) AnalyzeAll(w http.ResponseWriter, r *http.Request) {
	report, err := h.analyzer.Run(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Batch analysis failed")
		respondError(w, http.StatusInternalServerError, "Batch analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
