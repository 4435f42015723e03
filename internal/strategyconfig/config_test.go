package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStrategy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
meta:
  strategy_id: growth-screen
  version: "1.0"
screen:
  lookback: 2y
  top_n: 15
indicators:
  ma_short: 50
  ma_long: 200
  rsi_period: 14
  rsi_prior_lag: 5
  vol_window: 20
  drawdown_window: 63
  min_observations: 220
thresholds:
  rsi_buy_low: 35
  rsi_buy_high: 50
  rsi_take_profit: 70
  drawdown_alarm: -0.15
  vol_alarm: 5
market:
  baseline: SPY
  ma_long: 200
  min_observations: 220
  theme_min_aligned: 260
  cluster_window: 126
  target_clusters: 6
  themes:
    - name: Semiconductors
      proxies: [SOXX]
`

func TestLoad(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		cfg, raw, err := Load(writeStrategy(t, validYAML))

		require.NoError(t, err)
		assert.NotEmpty(t, raw)
		assert.Equal(t, "growth-screen", cfg.Meta.StrategyID)
		assert.Equal(t, 15, cfg.Screen.TopN)
		assert.Equal(t, 200, cfg.Indicators.MALong)
		assert.Equal(t, 70.0, cfg.Thresholds.RSITakeProfit)
		require.Len(t, cfg.Market.Themes, 1)
		assert.Equal(t, []string{"SOXX"}, cfg.Market.Themes[0].Proxies)
	})

	t.Run("unknown field fails loudly", func(t *testing.T) {
		_, _, err := Load(writeStrategy(t, validYAML+"\nextra_section:\n  oops: 1\n"))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("falls back to the built-in strategy", func(t *testing.T) {
		cfg, raw, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))

		require.NoError(t, err)
		assert.Nil(t, raw)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("broken file is still fatal", func(t *testing.T) {
		_, _, err := LoadOrDefault(writeStrategy(t, "screen: [not a mapping"))
		require.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	mutations := []struct {
		name   string
		field  string
		mutate func(*Config)
	}{
		{"missing strategy id", "meta.strategy_id", func(c *Config) { c.Meta.StrategyID = "" }},
		{"bad lookback", "screen.lookback", func(c *Config) { c.Screen.Lookback = "3y" }},
		{"non-positive top_n", "screen.top_n", func(c *Config) { c.Screen.TopN = 0 }},
		{"inverted moving averages", "indicators", func(c *Config) { c.Indicators.MAShort = 300 }},
		{"short observation guard", "indicators.min_observations", func(c *Config) { c.Indicators.MinObservations = 100 }},
		{"inverted buy band", "thresholds", func(c *Config) { c.Thresholds.RSIBuyLow = 60 }},
		{"take profit inside buy band", "thresholds.rsi_take_profit", func(c *Config) { c.Thresholds.RSITakeProfit = 45 }},
		{"positive drawdown alarm", "thresholds.drawdown_alarm", func(c *Config) { c.Thresholds.DrawdownAlarm = 0.15 }},
		{"missing baseline", "market.baseline", func(c *Config) { c.Market.Baseline = "" }},
		{"theme without proxies", "market.themes[0].proxies", func(c *Config) { c.Market.Themes[0].Proxies = nil }},
		{"duplicate theme name", "market.themes[1].name", func(c *Config) { c.Market.Themes[1].Name = c.Market.Themes[0].Name }},
		{"single target cluster", "market.target_clusters", func(c *Config) { c.Market.TargetClusters = 1 }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("default strategy is valid", func(t *testing.T) {
		assert.NoError(t, Validate(Default()))
	})
}

func TestHash(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)
	b, err := Hash(Default())
	require.NoError(t, err)
	assert.Equal(t, a, b, "hash must be reproducible")
	assert.Len(t, a, 64)

	changed := Default()
	changed.Screen.TopN = 30
	c, err := Hash(changed)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
