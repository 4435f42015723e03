package marketctx

import (
	"context"
	"fmt"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/screener"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/signal"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

// Theme maps a display label to one or more proxy ETF tickers whose average
// close forms the synthetic theme series.
type Theme struct {
	Name    string   `yaml:"name"`
	Proxies []string `yaml:"proxies"`
}

// Config holds the analyzer's tunable parameters.
type Config struct {
	Baseline        string  `yaml:"baseline"`
	Themes          []Theme `yaml:"themes"`
	MALong          int     `yaml:"ma_long"`
	MinObservations int     `yaml:"min_observations"`
	ThemeMinAligned int     `yaml:"theme_min_aligned"`
	ClusterWindow   int     `yaml:"cluster_window"`
	TargetClusters  int     `yaml:"target_clusters"`
}

// DefaultConfig returns the reference market-context parameters: SPY as the
// regime baseline and a fixed growth-theme proxy table.
func DefaultConfig() Config {
	return Config{
		Baseline: "SPY",
		Themes: []Theme{
			{Name: "AI & Software", Proxies: []string{"QQQ"}},
			{Name: "Semiconductors", Proxies: []string{"SOXX"}},
			{Name: "Electrification", Proxies: []string{"LIT"}},
			{Name: "Green energy", Proxies: []string{"ICLN"}},
			{Name: "Solar", Proxies: []string{"TAN"}},
			{Name: "Defense", Proxies: []string{"ITA"}},
			{Name: "Robotics", Proxies: []string{"BOTZ"}},
			{Name: "Space", Proxies: []string{"ARKX"}},
			{Name: "Cybersecurity", Proxies: []string{"HACK"}},
		},
		MALong:          200,
		MinObservations: 220,
		ThemeMinAligned: 260,
		ClusterWindow:   126,
		TargetClusters:  6,
	}
}

// Analyzer computes market regime, theme rotation, correlation clusters and
// portfolio aggregates for a set of held tickers. One price fetch covers the
// baseline, every theme proxy and the portfolio.
type Analyzer struct {
	provider   contracts.PriceSeriesProvider
	calc       *indicator.Calculator
	classifier *signal.Classifier
	cfg        Config
	lookback   contracts.Lookback
	logger     *logger.Logger
}

// NewAnalyzer creates an analyzer with the default 2-year lookback. Theme
// relative strength needs at least 260 aligned points, which a 1-year window
// of ~252 trading days cannot provide.
func NewAnalyzer(provider contracts.PriceSeriesProvider, calc *indicator.Calculator, classifier *signal.Classifier, cfg Config, log *logger.Logger) *Analyzer {
	return &Analyzer{
		provider:   provider,
		calc:       calc,
		classifier: classifier,
		cfg:        cfg,
		lookback:   contracts.Lookback2Y,
		logger:     log,
	}
}

// Analyze runs the extended market analysis for a portfolio. The portfolio
// may be empty; regime and themes are still computed, clusters and
// aggregates come back empty/nil.
func (a *Analyzer) Analyze(ctx context.Context, portfolio []contracts.UniverseEntry) (*contracts.MarketContext, error) {
	entries := screener.NormalizeUniverse(portfolio)

	symbols := a.collectSymbols(entries)
	table, err := a.provider.GetCloses(ctx, symbols, a.lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch close prices: %w", err)
	}

	regime := a.classifyRegime(table)
	themes := a.rankThemes(table)

	tickers := make([]string, len(entries))
	for i, entry := range entries {
		tickers[i] = entry.Ticker
	}
	clusters := a.clusterTickers(table, tickers)
	aggregates := a.aggregate(a.portfolioRows(table, entries))

	a.logger.WithFields(map[string]interface{}{
		"regime":    string(regime),
		"themes":    len(themes),
		"clusters":  len(clusters),
		"portfolio": len(entries),
	}).Info("Market context computed")

	return &contracts.MarketContext{
		Regime:     regime,
		Themes:     themes,
		Clusters:   clusters,
		Aggregates: aggregates,
	}, nil
}

// collectSymbols unions the baseline, theme proxies and portfolio tickers,
// preserving first-seen order.
func (a *Analyzer) collectSymbols(entries []contracts.UniverseEntry) []string {
	seen := make(map[string]bool)
	var symbols []string
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		symbols = append(symbols, s)
	}

	add(a.cfg.Baseline)
	for _, theme := range a.cfg.Themes {
		for _, proxy := range theme.Proxies {
			add(proxy)
		}
	}
	for _, entry := range entries {
		add(entry.Ticker)
	}
	return symbols
}

// portfolioRows computes signal rows for the portfolio tickers that carry
// enough history. Short or missing tickers are silently skipped; aggregates
// only describe what could be assessed.
func (a *Analyzer) portfolioRows(table contracts.PriceTable, entries []contracts.UniverseEntry) []contracts.SignalRow {
	rows := make([]contracts.SignalRow, 0, len(entries))
	for _, entry := range entries {
		closes := table.Closes(entry.Ticker)
		snap, ok := a.calc.Snapshot(closes)
		if !ok {
			continue
		}
		assessment := a.classifier.Classify(*snap)
		rows = append(rows, contracts.SignalRow{
			Ticker:     entry.Ticker,
			Name:       entry.Name,
			Score:      assessment.Score,
			RSI:        snap.RSI,
			Vol20:      snap.Vol20,
			Drawdown:   snap.Drawdown,
			LastClose:  snap.LastClose,
			TrendUp:    assessment.TrendUp,
			RiskFlag:   assessment.RiskFlag,
			BuyFlag:    assessment.BuyFlag,
			TimingFlag: assessment.TimingFlag,
			Reasons:    assessment.Reasons,
		})
	}
	return rows
}
