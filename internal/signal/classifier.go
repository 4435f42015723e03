package signal

import (
	"math"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// Reason texts, appended in fixed order. Explanatory metadata only, never
// used in ranking.
const (
	ReasonBuyZone    = "buy zone: trend intact, RSI in buy range and rising"
	ReasonTakeProfit = "take profit: RSI elevated"
	ReasonRisk       = "risk: volatility, drawdown or trend break"
	ReasonDefault    = "strong setup (score)"
)

// Thresholds are the classifier's tunable constants. They are passed in at
// construction so tests can override them without touching shared state.
type Thresholds struct {
	RSIBuyLow     float64 `yaml:"rsi_buy_low"`
	RSIBuyHigh    float64 `yaml:"rsi_buy_high"`
	RSITakeProfit float64 `yaml:"rsi_take_profit"`
	DrawdownAlarm float64 `yaml:"drawdown_alarm"` // fraction, negative
	VolAlarm      float64 `yaml:"vol_alarm"`      // percent
}

// DefaultThresholds returns the reference screening thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIBuyLow:     35,
		RSIBuyHigh:    50,
		RSITakeProfit: 70,
		DrawdownAlarm: -0.15,
		VolAlarm:      5,
	}
}

// Classifier turns an indicator snapshot into the risk/buy/timing triad and
// a composite score. Deterministic, pure, no I/O.
type Classifier struct {
	t Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(t Thresholds) *Classifier {
	return &Classifier{t: t}
}

// Classify assesses a single snapshot.
func (c *Classifier) Classify(snap contracts.IndicatorSnapshot) contracts.Assessment {
	trendUp := snap.MAShort > snap.MALong

	// Risk: trend break or deep drawdown dominates volatility.
	var riskFlag contracts.RiskFlag
	switch {
	case !trendUp || snap.Drawdown < c.t.DrawdownAlarm:
		riskFlag = contracts.RiskHigh
	case snap.Vol20 > c.t.VolAlarm:
		riskFlag = contracts.RiskElevated
	default:
		riskFlag = contracts.RiskOK
	}

	// Buy-early: RSI inside the buy band and rising versus the prior
	// reading. An undefined prior (NaN) forces the flag false.
	buyFlag := trendUp &&
		snap.RSI > c.t.RSIBuyLow && snap.RSI < c.t.RSIBuyHigh &&
		!math.IsNaN(snap.RSIPrior) && snap.RSI > snap.RSIPrior

	// Timing: an overbought instrument is reported TAKE_PROFIT even when
	// the trend has broken.
	var timingFlag contracts.TimingFlag
	switch {
	case snap.RSI > c.t.RSITakeProfit:
		timingFlag = contracts.TimingTakeProfit
	case !trendUp:
		timingFlag = contracts.TimingExitRisk
	default:
		timingFlag = contracts.TimingHoldAdd
	}

	score := c.score(trendUp, snap.RSI, snap.Vol20)

	reasons := make([]string, 0, 3)
	if buyFlag {
		reasons = append(reasons, ReasonBuyZone)
	}
	if timingFlag == contracts.TimingTakeProfit {
		reasons = append(reasons, ReasonTakeProfit)
	}
	if riskFlag != contracts.RiskOK {
		reasons = append(reasons, ReasonRisk)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonDefault)
	}

	return contracts.Assessment{
		TrendUp:    trendUp,
		Score:      score,
		RiskFlag:   riskFlag,
		BuyFlag:    buyFlag,
		TimingFlag: timingFlag,
		Reasons:    reasons,
	}
}

// score composes trend, momentum and stability components. Momentum peaks
// at RSI 55 and decays linearly both directions; stability rewards low
// volatility. Range is roughly 0-100.
func (c *Classifier) score(trendUp bool, rsi, vol float64) float64 {
	trendComponent := 15.0
	if trendUp {
		trendComponent = 50.0
	}

	momentumComponent := math.Max(0, 30-math.Abs(rsi-55))
	stabilityComponent := math.Max(0, 20-vol)

	return trendComponent + momentumComponent + stabilityComponent
}
