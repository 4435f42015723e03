package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/universe"
)

// screenCmd runs a screening scan from the terminal.
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen a universe and print the ranked shortlist",
	Long: `Screens a universe on trend, RSI, volatility and drawdown and prints
the ranked top-N table.

Examples:
  go run ./cmd/dashboard screen --universe sp500
  go run ./cmd/dashboard screen --tickers NVDA,MSFT,ASML --top 10
  go run ./cmd/dashboard screen --file my-watchlist.csv`,
	RunE: runScreen,
}

var (
	screenUniverse string
	screenTickers  string
	screenFile     string
	screenTop      int
)

func init() {
	rootCmd.AddCommand(screenCmd)

	screenCmd.Flags().StringVar(&screenUniverse, "universe", "", "named universe (sp500)")
	screenCmd.Flags().StringVar(&screenTickers, "tickers", "", "comma-separated ticker list")
	screenCmd.Flags().StringVar(&screenFile, "file", "", "universe CSV file (ticker[,name])")
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "result size (default from strategy)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx := context.Background()

	entries, label, err := resolveCLIUniverse(ctx, a)
	if err != nil {
		return err
	}

	topN := screenTop
	if topN <= 0 {
		topN = a.strategy.Screen.TopN
	}

	fmt.Printf("Screening %s (%d candidates, top %d)...\n", label, len(entries), topN)

	report, err := a.screener.Screen(ctx, entries, topN)
	if err != nil {
		return fmt.Errorf("screening failed: %w", err)
	}

	printReport(report)
	return nil
}

func resolveCLIUniverse(ctx context.Context, a *app) ([]contracts.UniverseEntry, string, error) {
	switch {
	case screenTickers != "":
		var entries []contracts.UniverseEntry
		for _, ticker := range strings.Split(screenTickers, ",") {
			entries = append(entries, contracts.UniverseEntry{Ticker: ticker})
		}
		return entries, "custom", nil

	case screenFile != "":
		entries, err := universe.NewCSVSupplier(screenFile, a.log).GetUniverse(ctx)
		if err != nil {
			return nil, "", err
		}
		return entries, screenFile, nil

	case screenUniverse != "":
		supplier, ok := a.suppliers[screenUniverse]
		if !ok {
			return nil, "", fmt.Errorf("unknown universe %q", screenUniverse)
		}
		entries, err := supplier.GetUniverse(ctx)
		if err != nil {
			return nil, "", err
		}
		return entries, screenUniverse, nil

	default:
		return nil, "", fmt.Errorf("one of --universe, --tickers or --file is required")
	}
}

func printReport(report *contracts.ScreenReport) {
	if len(report.Rows) == 0 {
		fmt.Println("\nNo instruments passed the screen.")
	} else {
		fmt.Printf("\n%-4s %-10s %-24s %7s %6s %6s %8s %-8s %-4s %-12s\n",
			"#", "TICKER", "NAME", "SCORE", "RSI", "VOL", "DD", "RISK", "BUY", "TIMING")
		for i, row := range report.Rows {
			buy := ""
			if row.BuyFlag {
				buy = "BUY"
			}
			name := row.Name
			if len(name) > 24 {
				name = name[:21] + "..."
			}
			fmt.Printf("%-4d %-10s %-24s %7.1f %6.1f %6.2f %7.1f%% %-8s %-4s %-12s\n",
				i+1, row.Ticker, name, row.Score, row.RSI, row.Vol20, row.Drawdown*100,
				row.RiskFlag, buy, row.TimingFlag)
		}
	}

	if len(report.Excluded) > 0 {
		fmt.Printf("\nExcluded %d tickers:\n", len(report.Excluded))
		for _, exclusion := range report.Excluded {
			fmt.Printf("  %-10s %s\n", exclusion.Ticker, exclusion.Reason)
		}
	}
}
