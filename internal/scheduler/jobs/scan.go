package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/history"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/metrics"
)

// ScanJob runs the daily screening scan for one universe and persists the
// result when storage is configured.
type ScanJob struct {
	screener contracts.Screener
	supplier contracts.UniverseSupplier
	universe string
	topN     int
	schedule string

	configHash string
	history    *history.Repository // nil disables persistence
	metrics    *metrics.Metrics    // nil disables metrics
	logger     *logger.Logger
}

// NewScanJob creates the scheduled scan for a named universe.
func NewScanJob(
	s contracts.Screener,
	supplier contracts.UniverseSupplier,
	universe string,
	topN int,
	schedule string,
	configHash string,
	historyRepo *history.Repository,
	metricsCollector *metrics.Metrics,
	log *logger.Logger,
) *ScanJob {
	return &ScanJob{
		screener:   s,
		supplier:   supplier,
		universe:   universe,
		topN:       topN,
		schedule:   schedule,
		configHash: configHash,
		history:    historyRepo,
		metrics:    metricsCollector,
		logger:     log,
	}
}

// Name returns the job name.
func (j *ScanJob) Name() string {
	return fmt.Sprintf("daily-scan-%s", j.universe)
}

// Schedule returns the cron expression.
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run fetches the universe, screens it and stores the run.
func (j *ScanJob) Run(ctx context.Context) error {
	entries, err := j.supplier.GetUniverse(ctx)
	if err != nil {
		return fmt.Errorf("fetch universe %s: %w", j.universe, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("universe %s is empty", j.universe)
	}

	start := time.Now()
	report, err := j.screener.Screen(ctx, entries, j.topN)
	duration := time.Since(start)

	if j.metrics != nil {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		j.metrics.ScansTotal.WithLabelValues(j.universe, outcome).Inc()
		j.metrics.ScanDuration.Observe(duration.Seconds())
	}
	if err != nil {
		return fmt.Errorf("screen universe %s: %w", j.universe, err)
	}

	if j.metrics != nil {
		j.metrics.TickersScreened.Add(float64(len(report.Rows)))
		for _, exclusion := range report.Excluded {
			j.metrics.ExclusionsTotal.WithLabelValues(string(exclusion.Reason)).Inc()
		}
	}

	if j.history != nil {
		if _, err := j.history.SaveRun(ctx, j.universe, j.configHash, report); err != nil {
			return fmt.Errorf("persist scan run: %w", err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"universe": j.universe,
		"rows":     len(report.Rows),
		"excluded": len(report.Excluded),
		"duration": duration,
	}).Info("Scheduled scan completed")

	return nil
}
