package handlers

import (
	"net/http"
	"strings"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

// ContextHandler serves the extended market analysis.
type ContextHandler struct {
	analyzer contracts.ContextAnalyzer
	logger   *logger.Logger
}

// NewContextHandler creates a new market-context handler.
func NewContextHandler(analyzer contracts.ContextAnalyzer, log *logger.Logger) *ContextHandler {
	return &ContextHandler{analyzer: analyzer, logger: log}
}

// Analyze computes regime, theme rotation, clusters and aggregates for the
// portfolio passed as a comma-separated ticker list. An empty portfolio is
// allowed: regime and themes are portfolio-independent.
// GET /api/context?tickers=NVDA,MSFT
func (h *ContextHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var portfolio []contracts.UniverseEntry
	if raw := r.URL.Query().Get("tickers"); raw != "" {
		for _, ticker := range strings.Split(raw, ",") {
			portfolio = append(portfolio, contracts.UniverseEntry{Ticker: ticker})
		}
	}

	result, err := h.analyzer.Analyze(r.Context(), portfolio)
	if err != nil {
		h.logger.WithError(err).Error("Market context analysis failed")
		respondError(w, http.StatusBadGateway, "Market context analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, result)
}
