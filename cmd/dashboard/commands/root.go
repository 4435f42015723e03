package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Investment dashboard - screening and market context engine",
	Long: `Investment dashboard CLI

Screens stock/ETF universes on trend, RSI, volatility and drawdown,
ranks the results, and computes market regime, theme rotation and
correlation clusters.

Usage:
  go run ./cmd/dashboard [command]

Examples:
  go run ./cmd/dashboard screen --universe sp500
  go run ./cmd/dashboard screen --tickers NVDA,MSFT,ASML --top 10
  go run ./cmd/dashboard context --tickers NVDA,MSFT
  go run ./cmd/dashboard api`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default from STRATEGY_PATH)")
}
