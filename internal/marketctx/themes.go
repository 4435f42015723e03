package marketctx

import (
	"sort"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
)

const (
	rsWindow1W = 5
	rsWindow1M = 21
	rsWindow3M = 63
)

// rankThemes scores every configured theme against the baseline and returns
// them sorted by score descending. Themes whose proxies are all missing, or
// that cannot be aligned with the baseline over enough history, are skipped.
func (a *Analyzer) rankThemes(table contracts.PriceTable) []contracts.ThemeRank {
	baseline, ok := table[a.cfg.Baseline]
	if !ok || len(baseline) == 0 {
		return nil
	}

	ranks := make([]contracts.ThemeRank, 0, len(a.cfg.Themes))
	for _, theme := range a.cfg.Themes {
		synthetic := syntheticSeries(table, theme.Proxies)
		if len(synthetic) == 0 {
			a.logger.WithField("theme", theme.Name).Warn("Theme skipped: no proxy data")
			continue
		}

		themeCloses, baseCloses := alignByDate(synthetic, baseline)
		if len(themeCloses) < a.cfg.ThemeMinAligned {
			a.logger.WithFields(map[string]interface{}{
				"theme":   theme.Name,
				"aligned": len(themeCloses),
			}).Warn("Theme skipped: insufficient aligned history")
			continue
		}

		rs1w := relativeStrength(themeCloses, baseCloses, rsWindow1W)
		rs1m := relativeStrength(themeCloses, baseCloses, rsWindow1M)
		rs3m := relativeStrength(themeCloses, baseCloses, rsWindow3M)

		trendOK := false
		if maLong, ok := indicator.MovingAverage(themeCloses, a.cfg.MALong); ok {
			trendOK = themeCloses[len(themeCloses)-1] > maLong
		}

		trendTerm := 0.0
		if trendOK {
			trendTerm = 1.0
		}

		ranks = append(ranks, contracts.ThemeRank{
			Name:         theme.Name,
			Score:        40*rs3m + 35*rs1m + 15*rs1w + 10*trendTerm,
			RS1W:         rs1w,
			RS1M:         rs1m,
			RS3M:         rs3m,
			Acceleration: rs1m - rs3m/3,
			TrendOK:      trendOK,
		})
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Score > ranks[j].Score
	})
	return ranks
}

// syntheticSeries averages the proxy closes per trading day. Only dates
// present in every available proxy contribute; proxies absent from the table
// are ignored entirely.
func syntheticSeries(table contracts.PriceTable, proxies []string) []contracts.PricePoint {
	var present [][]contracts.PricePoint
	for _, proxy := range proxies {
		if series := table[proxy]; len(series) > 0 {
			present = append(present, series)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if len(present) == 1 {
		return present[0]
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	dates := make(map[string]contracts.PricePoint)
	for _, series := range present {
		for _, p := range series {
			key := p.Date.Format("2006-01-02")
			sums[key] += p.Close
			counts[key]++
			dates[key] = p
		}
	}

	out := make([]contracts.PricePoint, 0, len(sums))
	for key, sum := range sums {
		if counts[key] != len(present) {
			continue
		}
		out = append(out, contracts.PricePoint{
			Date:  dates[key].Date,
			Close: sum / float64(len(present)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// alignByDate intersects two series on trading date and returns the paired
// close slices, ascending by date.
func alignByDate(a, b []contracts.PricePoint) ([]float64, []float64) {
	bByDate := make(map[string]float64, len(b))
	for _, p := range b {
		bByDate[p.Date.Format("2006-01-02")] = p.Close
	}

	aligned := make([]float64, 0, len(a))
	other := make([]float64, 0, len(a))
	for _, p := range a {
		bClose, ok := bByDate[p.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		aligned = append(aligned, p.Close)
		other = append(other, bClose)
	}
	return aligned, other
}

// relativeStrength is the theme's total return minus the baseline's over the
// trailing window. A window the series cannot cover contributes 0.
func relativeStrength(theme, baseline []float64, window int) float64 {
	themeRet, okT := totalReturn(theme, window)
	baseRet, okB := totalReturn(baseline, window)
	if !okT || !okB {
		return 0
	}
	return themeRet - baseRet
}

func totalReturn(closes []float64, window int) (float64, bool) {
	if len(closes) <= window {
		return 0, false
	}
	start := closes[len(closes)-1-window]
	if start == 0 {
		return 0, false
	}
	return closes[len(closes)-1]/start - 1, true
}
