package strategyconfig

import (
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/marketctx"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/signal"
)

// Config is the full screening strategy as a single YAML document. The file
// is the source of truth for every tunable number in the engine; nothing is
// hard-coded elsewhere.
type Config struct {
	Meta       Meta              `yaml:"meta" json:"meta"`
	Screen     Screen            `yaml:"screen" json:"screen"`
	Indicators indicator.Config  `yaml:"indicators" json:"indicators"`
	Thresholds signal.Thresholds `yaml:"thresholds" json:"thresholds"`
	Market     marketctx.Config  `yaml:"market" json:"market"`
}

// Meta identifies the strategy document.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Screen holds the screening run parameters.
type Screen struct {
	Lookback string `yaml:"lookback" json:"lookback"` // 6mo, 1y, 2y, 5y
	TopN     int    `yaml:"top_n" json:"top_n"`
}

// Default returns the built-in strategy, used when no YAML file is present.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "growth-screen",
			Version:    "1.0",
		},
		Screen: Screen{
			Lookback: "2y",
			TopN:     15,
		},
		Indicators: indicator.DefaultConfig(),
		Thresholds: signal.DefaultThresholds(),
		Market:     marketctx.DefaultConfig(),
	}
}
