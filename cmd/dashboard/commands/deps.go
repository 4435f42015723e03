package commands

import (
	"fmt"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/marketctx"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/marketdata/cached"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/marketdata/yahoo"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/screener"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/signal"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/strategyconfig"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/universe"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/config"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/httputil"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/redis"
)

// app bundles the wired engine for CLI commands. The API command does its
// own wiring on top because it also needs storage and metrics.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	strategy   *strategyconfig.Config
	configHash string

	provider  contracts.PriceSeriesProvider
	screener  *screener.Screener
	analyzer  *marketctx.Analyzer
	suppliers map[string]contracts.UniverseSupplier

	redisClient *redis.Client
}

// newApp loads config and strategy and wires the screening engine.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	strategyPath := cfg.StrategyPath
	if strategyFile != "" {
		strategyPath = strategyFile
	}
	strategy, _, err := strategyconfig.LoadOrDefault(strategyPath)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	configHash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"strategy":    strategy.Meta.StrategyID,
		"config_hash": configHash[:12],
	}).Info("Strategy loaded")

	httpClient := httputil.New(log, cfg.Yahoo.Timeout).WithRateLimit(cfg.Yahoo.RequestsPerSec)

	var provider contracts.PriceSeriesProvider = yahoo.NewClient(httpClient, log).WithBaseURL(cfg.Yahoo.BaseURL)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	provider = cached.New(provider, redis.NewCache(redisClient, "dashboard"), cfg.Redis.PriceCacheTTL, log)

	calc := indicator.NewCalculator(strategy.Indicators)
	classifier := signal.NewClassifier(strategy.Thresholds)

	engine := screener.New(provider, calc, classifier, log).
		WithLookback(contracts.Lookback(strategy.Screen.Lookback))
	analyzer := marketctx.NewAnalyzer(provider, calc, classifier, strategy.Market, log)

	fallback := universe.NewCSVSupplier("data/sp500.csv", log)
	suppliers := map[string]contracts.UniverseSupplier{
		"sp500": universe.NewSP500Supplier(httpClient, fallback, log),
	}

	return &app{
		cfg:         cfg,
		log:         log,
		strategy:    strategy,
		configHash:  configHash,
		provider:    provider,
		screener:    engine,
		analyzer:    analyzer,
		suppliers:   suppliers,
		redisClient: redisClient,
	}, nil
}

// close releases shared resources.
func (a *app) close() {
	if a.redisClient != nil {
		a.redisClient.Close()
	}
}
