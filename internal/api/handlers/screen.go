package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/history"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/screener"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/metrics"
)

// ScreenHandler serves screening runs over plain HTTP and as a progress
// stream over websocket.
type ScreenHandler struct {
	screener   *screener.Screener
	suppliers  map[string]contracts.UniverseSupplier
	defaultTop int
	configHash string
	history    *history.Repository // nil when persistence is disabled
	metrics    *metrics.Metrics    // nil when metrics are disabled
	logger     *logger.Logger
}

// NewScreenHandler creates a new screening handler.
func NewScreenHandler(
	s *screener.Screener,
	suppliers map[string]contracts.UniverseSupplier,
	defaultTop int,
	configHash string,
	historyRepo *history.Repository,
	metricsCollector *metrics.Metrics,
	log *logger.Logger,
) *ScreenHandler {
	return &ScreenHandler{
		screener:   s,
		suppliers:  suppliers,
		defaultTop: defaultTop,
		configHash: configHash,
		history:    historyRepo,
		metrics:    metricsCollector,
		logger:     log,
	}
}

// ScreenRequest selects what to scan: a named universe (e.g. "sp500") or an
// explicit ticker list. Exactly one of the two must be set.
type ScreenRequest struct {
	Universe string   `json:"universe,omitempty"`
	Tickers  []string `json:"tickers,omitempty"`
	TopN     int      `json:"top_n,omitempty"`
}

// ScreenResponse is the screening result plus run metadata.
type ScreenResponse struct {
	Universe   string                 `json:"universe"`
	TopN       int                    `json:"top_n"`
	ConfigHash string                 `json:"config_hash"`
	DurationMS int64                  `json:"duration_ms"`
	Report     contracts.ScreenReport `json:"report"`
}

// Screen runs a screening scan.
// POST /api/screen
func (h *ScreenHandler) Screen(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, status, err := h.run(r.Context(), req, nil)
	if err != nil {
		respondError(w, status, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// run resolves the universe, screens it and records the outcome.
func (h *ScreenHandler) run(ctx context.Context, req ScreenRequest, progress screener.ProgressFunc) (*ScreenResponse, int, error) {
	entries, label, err := h.resolveUniverse(ctx, req)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	topN := req.TopN
	if topN <= 0 {
		topN = h.defaultTop
	}

	start := time.Now()
	report, err := h.screener.ScreenWithProgress(ctx, entries, topN, progress)
	duration := time.Since(start)

	if h.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		h.metrics.ScansTotal.WithLabelValues(label, outcome).Inc()
		h.metrics.ScanDuration.Observe(duration.Seconds())
	}

	if err != nil {
		h.logger.WithError(err).WithField("universe", label).Error("Screening run failed")
		return nil, http.StatusBadGateway, fmt.Errorf("screening failed: %w", err)
	}

	if h.metrics != nil {
		h.metrics.TickersScreened.Add(float64(len(report.Rows)))
		for _, exclusion := range report.Excluded {
			h.metrics.ExclusionsTotal.WithLabelValues(string(exclusion.Reason)).Inc()
		}
	}

	if h.history != nil {
		if _, err := h.history.SaveRun(ctx, label, h.configHash, report); err != nil {
			// Persistence is best effort; the scan result still goes out.
			h.logger.WithError(err).Warn("Failed to persist scan run")
		}
	}

	return &ScreenResponse{
		Universe:   label,
		TopN:       topN,
		ConfigHash: h.configHash,
		DurationMS: duration.Milliseconds(),
		Report:     *report,
	}, http.StatusOK, nil
}

// resolveUniverse turns a request into universe entries and a label for
// metrics and history.
func (h *ScreenHandler) resolveUniverse(ctx context.Context, req ScreenRequest) ([]contracts.UniverseEntry, string, error) {
	if len(req.Tickers) > 0 {
		entries := make([]contracts.UniverseEntry, len(req.Tickers))
		for i, ticker := range req.Tickers {
			entries[i] = contracts.UniverseEntry{Ticker: ticker}
		}
		return entries, "custom", nil
	}

	if req.Universe == "" {
		return nil, "", fmt.Errorf("either universe or tickers must be set")
	}

	supplier, ok := h.suppliers[req.Universe]
	if !ok {
		return nil, "", fmt.Errorf("unknown universe %q", req.Universe)
	}

	entries, err := supplier.GetUniverse(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("universe %q unavailable: %v", req.Universe, err)
	}
	return entries, req.Universe, nil
}
