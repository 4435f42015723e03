package marketctx

import (
	"math"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// aggregate summarizes the portfolio's signal rows. Nil for an empty set:
// breadth and temperature are undefined without signals.
func (a *Analyzer) aggregate(rows []contracts.SignalRow) *contracts.PortfolioAggregates {
	if len(rows) == 0 {
		return nil
	}

	var trendUp, risky int
	for _, row := range rows {
		if row.TrendUp {
			trendUp++
		}
		if row.RiskFlag != contracts.RiskOK {
			risky++
		}
	}

	n := float64(len(rows))
	breadth := float64(trendUp) / n
	riskShare := float64(risky) / n
	temperature := int(math.Round(100 * (0.6*(1-breadth) + 0.4*riskShare)))

	return &contracts.PortfolioAggregates{
		TrendBreadth:     breadth,
		RiskFlagShare:    riskShare,
		Temperature:      temperature,
		SuggestedWeights: suggestWeights(rows),
	}
}

// suggestWeights sizes positions proportionally to score over volatility,
// normalized to sum to 1. Zero-volatility rows are excluded from the ratio;
// when no row yields a positive ratio, every weight is 0.
func suggestWeights(rows []contracts.SignalRow) map[string]float64 {
	ratios := make(map[string]float64, len(rows))
	var total float64
	for _, row := range rows {
		ratio := 0.0
		if row.Vol20 > 0 {
			ratio = row.Score / row.Vol20
		}
		ratios[row.Ticker] = ratio
		total += ratio
	}

	weights := make(map[string]float64, len(rows))
	for ticker, ratio := range ratios {
		if total > 0 {
			weights[ticker] = ratio / total
		} else {
			weights[ticker] = 0
		}
	}
	return weights
}
