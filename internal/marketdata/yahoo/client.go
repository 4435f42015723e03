package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/httputil"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches daily close history from the Yahoo Finance chart API. All
// Yahoo calls in the dashboard go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    defaultBaseURL,
	}
}

// WithBaseURL overrides the API host, used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// chartResponse mirrors the chart API payload. Close values are pointers:
// Yahoo emits JSON null for halted or unfilled trading days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetCloses fetches each symbol's close series. A symbol that fails to
// download is omitted from the table; only a total failure (every symbol
// errored) is returned as an error.
func (c *Client) GetCloses(ctx context.Context, tickers []string, lookback contracts.Lookback) (contracts.PriceTable, error) {
	table := make(contracts.PriceTable, len(tickers))
	if len(tickers) == 0 {
		return table, nil
	}

	var lastErr error
	failures := 0
	for _, ticker := range tickers {
		series, err := c.fetchSymbol(ctx, ticker, lookback)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Price download failed, symbol omitted")
			lastErr = err
			failures++
			continue
		}
		if len(series) > 0 {
			table[ticker] = series
		}
	}

	if failures == len(tickers) {
		return nil, fmt.Errorf("all %d symbols failed: %w", failures, lastErr)
	}
	return table, nil
}

func (c *Client) fetchSymbol(ctx context.Context, ticker string, lookback contracts.Lookback) ([]contracts.PricePoint, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(ticker), lookback)

	resp, err := c.httpClient.Get(ctx, endpoint, map[string]string{"User-Agent": "Mozilla/5.0"})
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}
	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %s (%s)",
			payload.Chart.Error.Code, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart response has no result")
	}

	result := payload.Chart.Result[0]

	// Adjusted closes when present; the raw quote closes otherwise.
	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	series := make([]contracts.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, contracts.PricePoint{
			Date:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	return series, nil
}
