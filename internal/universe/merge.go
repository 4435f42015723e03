package universe

import (
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
)

// Merge combines universes in order, dropping later duplicates. A watchlist
// merged before an index list keeps its display names.
func Merge(lists ...[]contracts.UniverseEntry) []contracts.UniverseEntry {
	seen := make(map[string]bool)
	var out []contracts.UniverseEntry
	for _, list := range lists {
		for _, entry := range list {
			if entry.Ticker == "" || seen[entry.Ticker] {
				continue
			}
			seen[entry.Ticker] = true
			out = append(out, entry)
		}
	}
	return out
}
