package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

// UniverseHandler serves the configured universe lists.
type UniverseHandler struct {
	suppliers map[string]contracts.UniverseSupplier
	logger    *logger.Logger
}

// NewUniverseHandler creates a new universe handler.
func NewUniverseHandler(suppliers map[string]contracts.UniverseSupplier, log *logger.Logger) *UniverseHandler {
	return &UniverseHandler{suppliers: suppliers, logger: log}
}

// Get returns the entries of a named universe.
// GET /api/universe/{name}
func (h *UniverseHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	supplier, ok := h.suppliers[name]
	if !ok {
		respondError(w, http.StatusNotFound, "Unknown universe")
		return
	}

	entries, err := supplier.GetUniverse(r.Context())
	if err != nil {
		h.logger.WithError(err).WithField("universe", name).Error("Failed to fetch universe")
		respondError(w, http.StatusBadGateway, "Failed to fetch universe")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"universe": name,
		"count":    len(entries),
		"entries":  entries,
	})
}
