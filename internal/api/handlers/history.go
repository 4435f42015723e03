package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/history"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

// HistoryHandler serves persisted scan runs.
type HistoryHandler struct {
	repo   *history.Repository
	logger *logger.Logger
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(repo *history.Repository, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{repo: repo, logger: log}
}

// List returns recent runs for a universe, without row payloads.
// GET /api/history?universe=sp500&limit=20
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	universe := r.URL.Query().Get("universe")
	if universe == "" {
		respondError(w, http.StatusBadRequest, "universe query parameter is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.repo.ListRuns(r.Context(), universe, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list scan runs")
		respondError(w, http.StatusInternalServerError, "Failed to list scan runs")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"universe": universe,
		"runs":     runs,
	})
}

// Latest returns the most recent run for a universe.
// GET /api/history/latest?universe=sp500
func (h *HistoryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	universe := r.URL.Query().Get("universe")
	if universe == "" {
		respondError(w, http.StatusBadRequest, "universe query parameter is required")
		return
	}

	run, err := h.repo.LatestRun(r.Context(), universe)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load latest scan run")
		respondError(w, http.StatusInternalServerError, "Failed to load latest scan run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "No scan runs stored for this universe")
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// Get returns one run by id.
// GET /api/history/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run id")
		return
	}

	run, err := h.repo.GetRun(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load scan run")
		respondError(w, http.StatusInternalServerError, "Failed to load scan run")
		return
	}
	if run == nil {
		respondError(w, http.StatusNotFound, "Scan run not found")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
