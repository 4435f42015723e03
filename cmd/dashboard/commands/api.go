package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/api"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/api/handlers"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/history"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/scheduler"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/scheduler/jobs"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/database"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/metrics"
)

// apiCmd starts the HTTP API server.
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the dashboard API server",
	Long: `Starts the REST API server with the scheduled daily scan.

Endpoints:
  GET  /health                  - Health check
  POST /api/screen              - Run a screening scan
  GET  /api/screen/stream       - Scan with websocket progress
  GET  /api/context             - Market regime, themes, clusters
  GET  /api/universe/{name}     - Fetch a universe list
  GET  /api/history             - Stored scan runs (requires database)
  GET  /metrics                 - Prometheus metrics

Example:
  go run ./cmd/dashboard api
  go run ./cmd/dashboard api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}
	log := a.log

	// Scan history is optional: without a database the API simply has no
	// history endpoints.
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

	screenHandler := handlers.NewScreenHandler(
		a.screener, a.suppliers, a.strategy.Screen.TopN, a.configHash,
		historyRepo, metricsCollector, log)
	contextHandler := handlers.NewContextHandler(a.analyzer, log)
	universeHandler := handlers.NewUniverseHandler(a.suppliers, log)

	var historyHandler *handlers.HistoryHandler
	if historyRepo != nil {
		historyHandler = handlers.NewHistoryHandler(historyRepo, log)
	}

	router := api.NewRouter(screenHandler, contextHandler, universeHandler,
		historyHandler, metricsCollector, log)
	server := api.New(a.cfg, log, router)

	// Daily scheduled scan of the S&P 500.
	sched := scheduler.New(log)
	scanJob := jobs.NewScanJob(
		a.screener, a.suppliers["sp500"], "sp500",
		a.strategy.Screen.TopN, a.cfg.ScanSchedule, a.configHash,
		historyRepo, metricsCollector, log)
	if err := sched.AddJob(scanJob); err != nil {
		return fmt.Errorf("schedule daily scan: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
