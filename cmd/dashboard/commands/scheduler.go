package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/history"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/scheduler"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/scheduler/jobs"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/database"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/metrics"
)

// schedulerCmd runs the scheduled scans without the API server.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the daily scan scheduler in the foreground",
	Long: `Runs the cron scheduler that screens the S&P 500 on the configured
schedule and persists runs when a database is configured.

Example:
  go run ./cmd/dashboard scheduler
  go run ./cmd/dashboard scheduler --once`,
	RunE: runScheduler,
}

var schedulerOnce bool

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().BoolVar(&schedulerOnce, "once", false, "run the scan immediately and exit")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	var historyRepo *history.Repository
	if a.cfg.Database.Enabled {
		db, err := database.New(a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		historyRepo = history.NewRepository(db.Pool)
		if err := historyRepo.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		log.Info("Connected to database")
	}

	var metricsCollector *metrics.Metrics
	if a.cfg.MetricsEnabled {
		metricsCollector = metrics.New()
	}

	sched := scheduler.New(log)
	scanJob := jobs.NewScanJob(
		a.screener, a.suppliers["sp500"], "sp500",
		a.strategy.Screen.TopN, a.cfg.ScanSchedule, a.configHash,
		historyRepo, metricsCollector, log)
	if err := sched.AddJob(scanJob); err != nil {
		return fmt.Errorf("schedule daily scan: %w", err)
	}

	if schedulerOnce {
		if err := sched.RunNow(scanJob.Name()); err != nil {
			return err
		}
		jobHistory, err := sched.GetJobHistory(scanJob.Name())
		if err != nil {
			return err
		}
		if latest := jobHistory.Latest(); latest != nil && !latest.Success {
			return fmt.Errorf("scan failed: %s", latest.Error)
		}
		return nil
	}

	sched.Start()
	defer sched.Stop()

	fmt.Printf("Scheduler running (%s), press Ctrl+C to stop\n", a.cfg.ScanSchedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Scheduler stopped")
	return nil
}
