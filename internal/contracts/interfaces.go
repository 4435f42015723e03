package contracts

import "context"

// Screener screens a universe and returns ranked signal rows, at most topN.
// Expensive full-universe scans must be explicitly requested by the caller;
// the engine itself never triggers one.
type Screener interface {
	Screen(ctx context.Context, entries []UniverseEntry, topN int) (*ScreenReport, error)
}

// ContextAnalyzer computes market regime, theme rotation, clustering and
// portfolio aggregates for a set of held tickers. Independent of Screen.
type ContextAnalyzer interface {
	Analyze(ctx context.Context, portfolio []UniverseEntry) (*MarketContext, error)
}
