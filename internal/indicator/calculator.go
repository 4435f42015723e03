package indicator

import (
	"math"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// Config holds the indicator windows. Defaults match the dashboard's
// screening setup: 50/200 trend, 14-period RSI, 20-day volatility and the
// trailing 3-month (63 trading days) drawdown peak.
type Config struct {
	MAShort         int `yaml:"ma_short"`
	MALong          int `yaml:"ma_long"`
	RSIPeriod       int `yaml:"rsi_period"`
	RSIPriorLag     int `yaml:"rsi_prior_lag"` // trading days between current and prior RSI reading
	VolWindow       int `yaml:"vol_window"`
	DrawdownWindow  int `yaml:"drawdown_window"`
	MinObservations int `yaml:"min_observations"`
}

// DefaultConfig returns the reference indicator windows.
func DefaultConfig() Config {
	return Config{
		MAShort:         50,
		MALong:          200,
		RSIPeriod:       14,
		RSIPriorLag:     5,
		VolWindow:       20,
		DrawdownWindow:  63,
		MinObservations: 220,
	}
}

// Calculator computes per-instrument indicator snapshots. Pure computation,
// no I/O.
type Calculator struct {
	cfg Config
}

// NewCalculator creates a calculator with the given windows.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Snapshot computes the indicator snapshot for one close series, ascending
// by date. Returns false when the series is shorter than the minimum
// observation guard; the caller must treat that as "no signal", not an
// error.
func (c *Calculator) Snapshot(closes []float64) (*contracts.IndicatorSnapshot, bool) {
	n := len(closes)
	if n < c.cfg.MinObservations {
		return nil, false
	}

	maShort, _ := MovingAverage(closes, c.cfg.MAShort)
	maLong, _ := MovingAverage(closes, c.cfg.MALong)

	rsiNow := rsiAt(closes, c.cfg.RSIPeriod, n-1)

	rsiPrior := math.NaN()
	if priorEnd := n - 1 - c.cfg.RSIPriorLag; priorEnd >= c.cfg.RSIPeriod {
		rsiPrior = rsiAt(closes, c.cfg.RSIPeriod, priorEnd)
	}

	vol, _ := RollingVolatility(closes, c.cfg.VolWindow)
	dd, _ := DrawdownFromPeak(closes, c.cfg.DrawdownWindow)

	return &contracts.IndicatorSnapshot{
		MAShort:   maShort,
		MALong:    maLong,
		RSI:       rsiNow,
		RSIPrior:  rsiPrior,
		Vol20:     vol,
		Drawdown:  dd,
		LastClose: closes[n-1],
	}, true
}

// MovingAverage returns the arithmetic mean of the trailing window closes.
// Undefined (false) before window observations exist.
func MovingAverage(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window {
		return 0, false
	}

	var sum float64
	for _, v := range closes[len(closes)-window:] {
		sum += v
	}
	return sum / float64(window), true
}

// RSI returns the Wilder-style relative strength index of the last
// observation, using a simple rolling mean of gains and losses.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}
	return rsiAt(closes, period, len(closes)-1), true
}

// rsiAt computes RSI for the window of deltas ending at index end.
// Division by a zero mean loss is handled by rule, not by infinity
// propagation: a gaining series saturates at 100, a flat one reads 50.
func rsiAt(closes []float64, period int, end int) float64 {
	var gains, losses float64
	for i := end - period + 1; i <= end; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	meanGain := gains / float64(period)
	meanLoss := losses / float64(period)

	if meanLoss == 0 {
		if meanGain == 0 {
			return 50
		}
		return 100
	}

	rs := meanGain / meanLoss
	return 100 - 100/(1+rs)
}

// RollingVolatility returns the sample standard deviation of daily
// percentage returns over the trailing window, in percent.
func RollingVolatility(closes []float64, window int) (float64, bool) {
	if window < 2 || len(closes) < window+1 {
		return 0, false
	}

	returns := make([]float64, 0, window)
	for i := len(closes) - window; i < len(closes); i++ {
		if closes[i-1] == 0 {
			return 0, false
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(window)

	var sq float64
	for _, r := range returns {
		d := r - mean
		sq += d * d
	}

	return math.Sqrt(sq/float64(window-1)) * 100, true
}

// DrawdownFromPeak returns (lastClose / trailing-window max) - 1, a value
// <= 0.
func DrawdownFromPeak(closes []float64, window int) (float64, bool) {
	if window <= 0 || len(closes) < window {
		return 0, false
	}

	peak := closes[len(closes)-window]
	for _, v := range closes[len(closes)-window:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		return 0, false
	}

	return closes[len(closes)-1]/peak - 1, true
}
