package strategyconfig

import (
	"fmt"
)

// ValidationError reports a single constraint violation, fatal at load time.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validLookbacks = map[string]bool{"6mo": true, "1y": true, "2y": true, "5y": true}

// Validate checks every required constraint. The first violation aborts the
// load; a partially valid strategy must never run.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Screen ===
	if !validLookbacks[cfg.Screen.Lookback] {
		return ValidationError{"screen.lookback", "must be one of 6mo, 1y, 2y, 5y"}
	}
	if cfg.Screen.TopN <= 0 {
		return ValidationError{"screen.top_n", "must be > 0"}
	}

	// === Indicators ===
	if cfg.Indicators.MAShort <= 0 || cfg.Indicators.MALong <= 0 {
		return ValidationError{"indicators", "moving average windows must be > 0"}
	}
	if cfg.Indicators.MAShort >= cfg.Indicators.MALong {
		return ValidationError{"indicators", "ma_short must be < ma_long"}
	}
	if cfg.Indicators.RSIPeriod <= 0 {
		return ValidationError{"indicators.rsi_period", "must be > 0"}
	}
	if cfg.Indicators.RSIPriorLag <= 0 {
		return ValidationError{"indicators.rsi_prior_lag", "must be > 0"}
	}
	if cfg.Indicators.VolWindow < 2 {
		return ValidationError{"indicators.vol_window", "must be >= 2"}
	}
	if cfg.Indicators.DrawdownWindow <= 0 {
		return ValidationError{"indicators.drawdown_window", "must be > 0"}
	}
	if cfg.Indicators.MinObservations < cfg.Indicators.MALong {
		return ValidationError{"indicators.min_observations", "must cover the long moving average window"}
	}

	// === Thresholds ===
	if cfg.Thresholds.RSIBuyLow >= cfg.Thresholds.RSIBuyHigh {
		return ValidationError{"thresholds", "rsi_buy_low must be < rsi_buy_high"}
	}
	if cfg.Thresholds.RSITakeProfit <= cfg.Thresholds.RSIBuyHigh {
		return ValidationError{"thresholds.rsi_take_profit", "must be > rsi_buy_high"}
	}
	if cfg.Thresholds.DrawdownAlarm >= 0 {
		return ValidationError{"thresholds.drawdown_alarm", "must be < 0"}
	}
	if cfg.Thresholds.VolAlarm <= 0 {
		return ValidationError{"thresholds.vol_alarm", "must be > 0"}
	}

	// === Market ===
	if cfg.Market.Baseline == "" {
		return ValidationError{"market.baseline", "required"}
	}
	seen := make(map[string]bool, len(cfg.Market.Themes))
	for i, theme := range cfg.Market.Themes {
		if theme.Name == "" {
			return ValidationError{fmt.Sprintf("market.themes[%d].name", i), "required"}
		}
		if seen[theme.Name] {
			return ValidationError{fmt.Sprintf("market.themes[%d].name", i), "duplicate theme name"}
		}
		seen[theme.Name] = true
		if len(theme.Proxies) == 0 {
			return ValidationError{fmt.Sprintf("market.themes[%d].proxies", i), "at least one proxy required"}
		}
	}
	if cfg.Market.TargetClusters < 2 {
		return ValidationError{"market.target_clusters", "must be >= 2"}
	}
	if cfg.Market.ClusterWindow <= 0 {
		return ValidationError{"market.cluster_window", "must be > 0"}
	}
	if cfg.Market.ThemeMinAligned <= cfg.Market.MALong {
		return ValidationError{"market.theme_min_aligned", "must exceed the long moving average window"}
	}

	return nil
}
