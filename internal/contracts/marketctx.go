package contracts

// Regime is a coarse market-wide risk classification derived from one
// baseline instrument's position relative to its long moving average.
type Regime string

const (
	RegimeRiskOn  Regime = "RISK_ON"
	RegimeRiskOff Regime = "RISK_OFF"
	RegimeUnknown Regime = "UNKNOWN"
)

// ThemeRank is one theme's relative-strength ranking versus the baseline.
type ThemeRank struct {
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	RS1W         float64 `json:"rs_1w"`
	RS1M         float64 `json:"rs_1m"`
	RS3M         float64 `json:"rs_3m"`
	Acceleration float64 `json:"acceleration"`
	TrendOK      bool    `json:"trend_ok"`
}

// ClusterAssignment maps ticker to an advisory cluster id. Display-only
// segmentation; never consumed by scoring.
type ClusterAssignment map[string]int

// PortfolioAggregates summarizes a set of portfolio signal rows. Nil when
// the signal set is empty (temperature is undefined then).
type PortfolioAggregates struct {
	TrendBreadth     float64            `json:"trend_breadth"`
	RiskFlagShare    float64            `json:"risk_flag_share"`
	Temperature      int                `json:"temperature"`
	SuggestedWeights map[string]float64 `json:"suggested_weights"`
}

// MarketContext bundles the extended-analysis output for a portfolio.
type MarketContext struct {
	Regime     Regime               `json:"regime"`
	Themes     []ThemeRank          `json:"themes"`
	Clusters   ClusterAssignment    `json:"clusters"`
	Aggregates *PortfolioAggregates `json:"aggregates,omitempty"`
}
