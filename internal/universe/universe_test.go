package universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/httputil"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "universe.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVSupplier(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Run("standard header", func(t *testing.T) {
		path := writeCSV(t, "ticker,name\nNVDA,NVIDIA\nMSFT,Microsoft\n")
		got, err := NewCSVSupplier(path, log).GetUniverse(ctx)

		require.NoError(t, err)
		assert.Equal(t, []contracts.UniverseEntry{
			{Ticker: "NVDA", Name: "NVIDIA"},
			{Ticker: "MSFT", Name: "Microsoft"},
		}, got)
	})

	t.Run("legacy Navn alias", func(t *testing.T) {
		path := writeCSV(t, "ticker,Navn\nNOVO-B.CO,Novo Nordisk\n")
		got, err := NewCSVSupplier(path, log).GetUniverse(ctx)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Novo Nordisk", got[0].Name)
	})

	t.Run("name column optional", func(t *testing.T) {
		path := writeCSV(t, "ticker\nAAPL\n")
		got, err := NewCSVSupplier(path, log).GetUniverse(ctx)

		require.NoError(t, err)
		assert.Equal(t, []contracts.UniverseEntry{{Ticker: "AAPL"}}, got)
	})

	t.Run("blank and duplicate tickers dropped", func(t *testing.T) {
		path := writeCSV(t, "ticker,name\nNVDA,NVIDIA\n,Blank Inc\nNVDA,Again\nAMD,AMD\n")
		got, err := NewCSVSupplier(path, log).GetUniverse(ctx)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "NVDA", got[0].Ticker)
		assert.Equal(t, "NVIDIA", got[0].Name, "first occurrence wins")
		assert.Equal(t, "AMD", got[1].Ticker)
	})

	t.Run("missing ticker column is an error", func(t *testing.T) {
		path := writeCSV(t, "symbol,name\nNVDA,NVIDIA\n")
		_, err := NewCSVSupplier(path, log).GetUniverse(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ticker column")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewCSVSupplier(filepath.Join(t.TempDir(), "nope.csv"), log).GetUniverse(ctx)
		require.Error(t, err)
	})
}

const sp500HTML = `<html><body>
<table class="wikitable" id="constituents"><tbody>
<tr><th>Symbol</th><th>Security</th></tr>
<tr><td>MMM</td><td>3M</td></tr>
<tr><td>BRK.B</td><td>Berkshire Hathaway</td></tr>
<tr><td>BRK.B</td><td>Duplicate row</td></tr>
</tbody></table>
</body></html>`

func newScrapeClient() *httputil.Client {
	return httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
}

func TestSP500Supplier(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	t.Run("scrapes constituents and rewrites dots", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(sp500HTML))
		}))
		defer srv.Close()

		got, err := NewSP500Supplier(newScrapeClient(), nil, log).WithURL(srv.URL).GetUniverse(ctx)

		require.NoError(t, err)
		assert.Equal(t, []contracts.UniverseEntry{
			{Ticker: "MMM", Name: "3M"},
			{Ticker: "BRK-B", Name: "Berkshire Hathaway"},
		}, got)
	})

	t.Run("falls back to CSV on scrape failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		fallback := NewCSVSupplier(writeCSV(t, "ticker,name\nNVDA,NVIDIA\n"), log)
		got, err := NewSP500Supplier(newScrapeClient(), fallback, log).WithURL(srv.URL).GetUniverse(ctx)

		require.NoError(t, err)
		assert.Equal(t, []contracts.UniverseEntry{{Ticker: "NVDA", Name: "NVIDIA"}}, got)
	})

	t.Run("empty universe instead of crash when everything fails", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		got, err := NewSP500Supplier(newScrapeClient(), nil, log).WithURL(srv.URL).GetUniverse(ctx)

		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("page without constituents falls through", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html><body><p>maintenance</p></body></html>"))
		}))
		defer srv.Close()

		got, err := NewSP500Supplier(newScrapeClient(), nil, log).WithURL(srv.URL).GetUniverse(ctx)

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMerge(t *testing.T) {
	watchlist := []contracts.UniverseEntry{
		{Ticker: "NVDA", Name: "NVIDIA (watchlist)"},
		{Ticker: "ASML", Name: "ASML"},
	}
	index := []contracts.UniverseEntry{
		{Ticker: "NVDA", Name: "NVIDIA Corporation"},
		{Ticker: "MSFT", Name: "Microsoft"},
		{Ticker: ""},
	}

	got := Merge(watchlist, index)

	assert.Equal(t, []contracts.UniverseEntry{
		{Ticker: "NVDA", Name: "NVIDIA (watchlist)"},
		{Ticker: "ASML", Name: "ASML"},
		{Ticker: "MSFT", Name: "Microsoft"},
	}, got)
}
