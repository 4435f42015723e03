package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/redis"
)

// Provider decorates a PriceSeriesProvider with a Redis-backed cache keyed
// by the requested symbol set and lookback. When the cache is disabled every
// call passes straight through.
type Provider struct {
	inner  contracts.PriceSeriesProvider
	cache  *redis.Cache
	ttl    time.Duration
	logger *logger.Logger
}

// New wraps a provider with caching. Daily bars only change after the close,
// so the default TTL is one hour.
func New(inner contracts.PriceSeriesProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *Provider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Provider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// GetCloses serves from cache when possible, otherwise delegates and stores
// the result. Cache failures degrade to a plain fetch, never to an error.
func (p *Provider) GetCloses(ctx context.Context, tickers []string, lookback contracts.Lookback) (contracts.PriceTable, error) {
	key := redis.ClosesKey(requestDigest(tickers), string(lookback))

	var table contracts.PriceTable
	hit, err := p.cache.Get(ctx, key, &table)
	if err != nil {
		p.logger.WithError(err).Warn("Price cache read failed")
	}
	if hit {
		p.logger.WithField("tickers", len(tickers)).Debug("Price cache hit")
		return table, nil
	}

	table, err = p.inner.GetCloses(ctx, tickers, lookback)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Set(ctx, key, table, p.ttl); err != nil {
		p.logger.WithError(err).Warn("Price cache write failed")
	}
	return table, nil
}

// requestDigest hashes the symbol set order-insensitively so permutations of
// the same universe share a cache entry.
func requestDigest(tickers []string) string {
	sorted := make([]string, len(tickers))
	copy(sorted, tickers)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:8])
}
