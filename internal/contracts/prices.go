package contracts

import (
	"context"
	"time"
)

// Lookback is the history window requested from a price provider.
type Lookback string

const (
	Lookback6M Lookback = "6mo"
	Lookback1Y Lookback = "1y"
	Lookback2Y Lookback = "2y"
	Lookback5Y Lookback = "5y"
)

// PricePoint is one trading day's adjusted close.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceTable maps ticker to its close series, ascending by date. Only
// trading days are present; tickers that failed to download are simply
// absent from the map.
type PriceTable map[string][]PricePoint

// Closes returns the raw close values for a ticker, or nil when absent.
func (t PriceTable) Closes(ticker string) []float64 {
	series, ok := t[ticker]
	if !ok {
		return nil
	}
	closes := make([]float64, len(series))
	for i, p := range series {
		closes[i] = p.Close
	}
	return closes
}

// Has reports whether a ticker is present with at least one observation.
func (t PriceTable) Has(ticker string) bool {
	return len(t[ticker]) > 0
}

// PriceSeriesProvider returns an aligned daily close table for a set of
// symbols. Partial symbol failure is tolerated: a failing symbol is omitted
// from the table. Only a total failure (no symbol could be fetched) is
// reported as an error.
type PriceSeriesProvider interface {
	GetCloses(ctx context.Context, tickers []string, lookback Lookback) (PriceTable, error)
}

// UniverseSupplier returns a candidate set of instruments. No freshness
// guarantee is implied; callers decide cache lifetime.
type UniverseSupplier interface {
	GetUniverse(ctx context.Context) ([]UniverseEntry, error)
}
