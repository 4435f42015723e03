package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// contextCmd prints the extended market analysis.
var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Show market regime, theme rotation and portfolio clusters",
	Long: `Computes the market regime from the baseline index, ranks the
configured themes by relative strength, and clusters the given portfolio
by return correlation.

Example:
  go run ./cmd/dashboard context --tickers NVDA,MSFT,ASML`,
	RunE: runContext,
}

var contextTickers string

func init() {
	rootCmd.AddCommand(contextCmd)

	contextCmd.Flags().StringVar(&contextTickers, "tickers", "", "comma-separated portfolio tickers")
}

func runContext(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	var portfolio []contracts.UniverseEntry
	if contextTickers != "" {
		for _, ticker := range strings.Split(contextTickers, ",") {
			portfolio = append(portfolio, contracts.UniverseEntry{Ticker: ticker})
		}
	}

	result, err := a.analyzer.Analyze(context.Background(), portfolio)
	if err != nil {
		return fmt.Errorf("market context failed: %w", err)
	}

	fmt.Printf("Market regime: %s (baseline %s)\n", result.Regime, a.strategy.Market.Baseline)

	if len(result.Themes) > 0 {
		fmt.Printf("\n%-20s %7s %7s %7s %7s %7s %-6s\n",
			"THEME", "SCORE", "RS1W", "RS1M", "RS3M", "ACCEL", "TREND")
		for _, theme := range result.Themes {
			trend := ""
			if theme.TrendOK {
				trend = "OK"
			}
			fmt.Printf("%-20s %7.2f %6.1f%% %6.1f%% %6.1f%% %6.1f%% %-6s\n",
				theme.Name, theme.Score, theme.RS1W*100, theme.RS1M*100, theme.RS3M*100,
				theme.Acceleration*100, trend)
		}
	}

	if len(result.Clusters) > 0 {
		byCluster := make(map[int][]string)
		for ticker, id := range result.Clusters {
			byCluster[id] = append(byCluster[id], ticker)
		}
		ids := make([]int, 0, len(byCluster))
		for id := range byCluster {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		fmt.Println("\nCorrelation clusters:")
		for _, id := range ids {
			members := byCluster[id]
			sort.Strings(members)
			fmt.Printf("  %d: %s\n", id, strings.Join(members, ", "))
		}
	}

	if result.Aggregates != nil {
		agg := result.Aggregates
		fmt.Printf("\nPortfolio: breadth %.0f%%, risk share %.0f%%, temperature %d\n",
			agg.TrendBreadth*100, agg.RiskFlagShare*100, agg.Temperature)

		tickers := make([]string, 0, len(agg.SuggestedWeights))
		for ticker := range agg.SuggestedWeights {
			tickers = append(tickers, ticker)
		}
		sort.Strings(tickers)
		fmt.Println("Suggested weights:")
		for _, ticker := range tickers {
			fmt.Printf("  %-10s %5.1f%%\n", ticker, agg.SuggestedWeights[ticker]*100)
		}
	}

	return nil
}
