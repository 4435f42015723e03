package marketctx

import (
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
)

// classifyRegime reads the market regime off the baseline instrument: last
// close above its long moving average is RISK_ON, below is RISK_OFF. A
// missing or short baseline yields UNKNOWN rather than a guess.
func (a *Analyzer) classifyRegime(table contracts.PriceTable) contracts.Regime {
	closes := table.Closes(a.cfg.Baseline)
	if len(closes) < a.cfg.MinObservations {
		return contracts.RegimeUnknown
	}

	maLong, ok := indicator.MovingAverage(closes, a.cfg.MALong)
	if !ok {
		return contracts.RegimeUnknown
	}

	if closes[len(closes)-1] > maLong {
		return contracts.RegimeRiskOn
	}
	return contracts.RegimeRiskOff
}
