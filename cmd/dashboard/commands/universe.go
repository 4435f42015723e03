package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// universeCmd fetches and prints a named universe.
var universeCmd = &cobra.Command{
	Use:   "universe [name]",
	Short: "Fetch and print a universe list",
	Long: `Fetches a named universe and prints its entries.

Example:
  go run ./cmd/dashboard universe sp500`,
	Args: cobra.ExactArgs(1),
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	name := args[0]
	supplier, ok := a.suppliers[name]
	if !ok {
		return fmt.Errorf("unknown universe %q", name)
	}

	entries, err := supplier.GetUniverse(context.Background())
	if err != nil {
		return fmt.Errorf("fetch universe: %w", err)
	}

	fmt.Printf("Universe %s: %d entries\n\n", name, len(entries))
	for _, entry := range entries {
		fmt.Printf("  %-10s %s\n", entry.Ticker, entry.Name)
	}
	return nil
}
