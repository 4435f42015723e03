package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/httputil"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

const wikiSP500URL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// SP500Supplier scrapes the S&P 500 constituent list from Wikipedia. When
// the scrape fails it falls back to a local CSV snapshot if one is
// configured; when that is also unavailable it returns an empty universe
// rather than an error, so the dashboard degrades instead of crashing.
type SP500Supplier struct {
	client   *httputil.Client
	url      string
	fallback *CSVSupplier
	logger   *logger.Logger
}

// NewSP500Supplier creates the scraper. fallback may be nil.
func NewSP500Supplier(client *httputil.Client, fallback *CSVSupplier, log *logger.Logger) *SP500Supplier {
	return &SP500Supplier{
		client:   client,
		url:      wikiSP500URL,
		fallback: fallback,
		logger:   log,
	}
}

// WithURL overrides the scrape target, used by tests.
func (s *SP500Supplier) WithURL(url string) *SP500Supplier {
	s.url = url
	return s
}

// GetUniverse returns the constituent list.
func (s *SP500Supplier) GetUniverse(ctx context.Context) ([]contracts.UniverseEntry, error) {
	entries, err := s.scrape(ctx)
	if err == nil {
		s.logger.WithField("entries", len(entries)).Info("S&P 500 universe fetched from Wikipedia")
		return entries, nil
	}

	s.logger.WithError(err).Warn("Wikipedia scrape failed, trying CSV fallback")

	if s.fallback != nil {
		if entries, csvErr := s.fallback.GetUniverse(ctx); csvErr == nil {
			return entries, nil
		} else {
			s.logger.WithError(csvErr).Warn("CSV fallback failed")
		}
	}

	return []contracts.UniverseEntry{}, nil
}

func (s *SP500Supplier) scrape(ctx context.Context) ([]contracts.UniverseEntry, error) {
	resp, err := s.client.Get(ctx, s.url, map[string]string{"User-Agent": "Mozilla/5.0"})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("wikipedia returned HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse wikipedia page: %w", err)
	}

	seen := make(map[string]bool)
	var entries []contracts.UniverseEntry
	doc.Find("table.wikitable").First().Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		// Yahoo uses dashes where Wikipedia uses dots: BRK.B -> BRK-B.
		ticker := strings.ReplaceAll(strings.TrimSpace(cells.Eq(0).Text()), ".", "-")
		if ticker == "" || seen[ticker] {
			return
		}
		seen[ticker] = true
		entries = append(entries, contracts.UniverseEntry{
			Ticker: ticker,
			Name:   strings.TrimSpace(cells.Eq(1).Text()),
		})
	})

	if len(entries) == 0 {
		return nil, fmt.Errorf("no constituents found on page")
	}
	return entries, nil
}
