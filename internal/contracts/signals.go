package contracts

// RiskFlag grades how defensive a holder should be about an instrument.
type RiskFlag string

const (
	RiskOK       RiskFlag = "OK"
	RiskElevated RiskFlag = "ELEVATED"
	RiskHigh     RiskFlag = "HIGH"
)

// TimingFlag suggests what to do with an existing position.
type TimingFlag string

const (
	TimingHoldAdd    TimingFlag = "HOLD_ADD"
	TimingTakeProfit TimingFlag = "TAKE_PROFIT"
	TimingExitRisk   TimingFlag = "EXIT_RISK"
)

// IndicatorSnapshot holds one instrument's indicator values, computed once
// per screening pass. RSIPrior is NaN when there is not enough history for
// the prior reading.
type IndicatorSnapshot struct {
	MAShort   float64 `json:"ma_short"`
	MALong    float64 `json:"ma_long"`
	RSI       float64 `json:"rsi"`
	RSIPrior  float64 `json:"rsi_prior"`
	Vol20     float64 `json:"vol_20"`      // 20-day stdev of daily returns, percent
	Drawdown  float64 `json:"drawdown_3m"` // fraction <= 0 vs trailing 63-day peak
	LastClose float64 `json:"last_close"`
}

// Assessment is the classifier's verdict on a single snapshot.
type Assessment struct {
	TrendUp    bool       `json:"trend_up"`
	Score      float64    `json:"score"`
	RiskFlag   RiskFlag   `json:"risk_flag"`
	BuyFlag    bool       `json:"buy_flag"`
	TimingFlag TimingFlag `json:"timing_flag"`
	Reasons    []string   `json:"reasons"`
}

// SignalRow is one screened instrument: identity, snapshot extract and
// classification. Created fresh each run, never mutated afterward.
type SignalRow struct {
	Ticker     string     `json:"ticker"`
	Name       string     `json:"name,omitempty"`
	Score      float64    `json:"score"`
	RSI        float64    `json:"rsi"`
	Vol20      float64    `json:"vol_20"`
	Drawdown   float64    `json:"drawdown_3m"`
	LastClose  float64    `json:"last_close"`
	TrendUp    bool       `json:"trend_up"`
	RiskFlag   RiskFlag   `json:"risk_flag"`
	BuyFlag    bool       `json:"buy_flag"`
	TimingFlag TimingFlag `json:"timing_flag"`
	Reasons    []string   `json:"reasons"`
}

// ExclusionReason says why a ticker produced no signal row.
type ExclusionReason string

const (
	// ExcludedMissingData: requested but absent from the fetched table.
	ExcludedMissingData ExclusionReason = "missing_data"
	// ExcludedShortHistory: fewer observations than the indicator guard allows.
	ExcludedShortHistory ExclusionReason = "short_history"
)

// Exclusion records a silently dropped ticker for diagnostics. Exclusions
// never surface as errors; screening exists to distill a shortlist from a
// noisy universe.
type Exclusion struct {
	Ticker string          `json:"ticker"`
	Reason ExclusionReason `json:"reason"`
}

// ScreenReport is the ranked output of one screening run plus the
// diagnostic side channel of dropped tickers.
type ScreenReport struct {
	Rows     []SignalRow `json:"rows"`
	Excluded []Exclusion `json:"excluded,omitempty"`
}
