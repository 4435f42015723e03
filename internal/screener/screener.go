package screener

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/signal"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

// ProgressFunc is called after each ticker is processed during a screening
// run. Used by the API layer to stream scan progress.
type ProgressFunc func(done, total int, ticker string)

// Screener orchestrates the price provider, indicator calculator and
// classifier across a universe, then ranks and truncates the result.
//
// Every run is a pure recomputation from freshly fetched prices: no state
// survives between runs, so concurrent invocations are safe.
type Screener struct {
	provider   contracts.PriceSeriesProvider
	calc       *indicator.Calculator
	classifier *signal.Classifier
	lookback   contracts.Lookback
	logger     *logger.Logger
}

// New creates a screener with the default 2-year lookback.
func New(provider contracts.PriceSeriesProvider, calc *indicator.Calculator, classifier *signal.Classifier, log *logger.Logger) *Screener {
	return &Screener{
		provider:   provider,
		calc:       calc,
		classifier: classifier,
		lookback:   contracts.Lookback2Y,
		logger:     log,
	}
}

// WithLookback overrides the price history window.
func (s *Screener) WithLookback(lookback contracts.Lookback) *Screener {
	s.lookback = lookback
	return s
}

// Screen screens a universe and returns at most topN ranked rows.
func (s *Screener) Screen(ctx context.Context, entries []contracts.UniverseEntry, topN int) (*contracts.ScreenReport, error) {
	return s.ScreenWithProgress(ctx, entries, topN, nil)
}

// ScreenWithProgress is Screen with a per-ticker progress callback.
func (s *Screener) ScreenWithProgress(ctx context.Context, entries []contracts.UniverseEntry, topN int, progress ProgressFunc) (*contracts.ScreenReport, error) {
	universe := NormalizeUniverse(entries)

	report := &contracts.ScreenReport{
		Rows:     make([]contracts.SignalRow, 0, len(universe)),
		Excluded: make([]contracts.Exclusion, 0),
	}
	if len(universe) == 0 {
		return report, nil
	}

	tickers := make([]string, len(universe))
	for i, entry := range universe {
		tickers[i] = entry.Ticker
	}

	table, err := s.provider.GetCloses(ctx, tickers, s.lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch close prices: %w", err)
	}

	for i, entry := range universe {
		closes := table.Closes(entry.Ticker)
		if len(closes) == 0 {
			// Download failure or delisted symbol: excluded, not an error.
			report.Excluded = append(report.Excluded, contracts.Exclusion{
				Ticker: entry.Ticker,
				Reason: contracts.ExcludedMissingData,
			})
			if progress != nil {
				progress(i+1, len(universe), entry.Ticker)
			}
			continue
		}

		snap, ok := s.calc.Snapshot(closes)
		if !ok {
			report.Excluded = append(report.Excluded, contracts.Exclusion{
				Ticker: entry.Ticker,
				Reason: contracts.ExcludedShortHistory,
			})
			if progress != nil {
				progress(i+1, len(universe), entry.Ticker)
			}
			continue
		}

		assessment := s.classifier.Classify(*snap)
		report.Rows = append(report.Rows, contracts.SignalRow{
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

		if progress != nil {
			progress(i+1, len(universe), entry.Ticker)
		}
	}

	rankRows(report.Rows)

	if topN < 0 {
		topN = 0
	}
	if len(report.Rows) > topN {
		report.Rows = report.Rows[:topN]
	}

	s.logger.WithFields(map[string]interface{}{
		"universe": len(universe),
		"rows":     len(report.Rows),
		"excluded": len(report.Excluded),
		"top_n":    topN,
	}).Info("Screening completed")

	return report, nil
}

// rankRows sorts in place: buy-zone candidates first, then score
// descending. The sort is stable so discovery order breaks exact ties.
func rankRows(rows []contracts.SignalRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].BuyFlag != rows[j].BuyFlag {
			return rows[i].BuyFlag
		}
		return rows[i].Score > rows[j].Score
	})
}

// NormalizeUniverse produces the canonical universe shape: uppercased and
// trimmed tickers, blanks dropped, duplicates removed (first occurrence
// wins). All downstream computation works on this shape only.
func NormalizeUniverse(entries []contracts.UniverseEntry) []contracts.UniverseEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]contracts.UniverseEntry, 0, len(entries))

	for _, entry := range entries {
		ticker := strings.ToUpper(strings.TrimSpace(entry.Ticker))
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		out = append(out, contracts.UniverseEntry{
			Ticker: ticker,
			Name:   strings.TrimSpace(entry.Name),
		})
	}

	return out
}
