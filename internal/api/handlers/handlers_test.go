package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/contracts"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/indicator"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/screener"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/internal/signal"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/logger"
	"github.com/michaeldovorbeck-crypto/investment-dashboard/pkg/metrics"
)

type fakeProvider struct {
	table contracts.PriceTable
	err   error
}

func (f *fakeProvider) GetCloses(context.Context, []string, contracts.Lookback) (contracts.PriceTable, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.table, nil
}

type fakeSupplier struct {
	entries []contracts.UniverseEntry
	err     error
}

func (f *fakeSupplier) GetUniverse(context.Context) ([]contracts.UniverseEntry, error) {
	return f.entries, f.err
}

type fakeAnalyzer struct {
	result *contracts.MarketContext
	err    error
}

func (f *fakeAnalyzer) Analyze(context.Context, []contracts.UniverseEntry) (*contracts.MarketContext, error) {
	return f.result, f.err
}

func uptrend(n int) []contracts.PricePoint {
	base := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]contracts.PricePoint, n)
	v := 100.0
	for i := range points {
		points[i] = contracts.PricePoint{Date: base.AddDate(0, 0, i), Close: v}
		v += 0.25
	}
	return points
}

func newScreenHandler(provider contracts.PriceSeriesProvider, suppliers map[string]contracts.UniverseSupplier) *ScreenHandler {
	s := screener.New(provider,
		indicator.NewCalculator(indicator.DefaultConfig()),
		signal.NewClassifier(signal.DefaultThresholds()),
		logger.NewNop())
	return NewScreenHandler(s, suppliers, 15, "testhash", nil, metrics.New(), logger.NewNop())
}

func TestScreenHandler_Screen(t *testing.T) {
	provider := &fakeProvider{table: contracts.PriceTable{
		"NVDA": uptrend(260),
		"MSFT": uptrend(260),
	}}

	t.Run("explicit ticker list", func(t *testing.T) {
		h := newScreenHandler(provider, nil)

		req := httptest.NewRequest("POST", "/api/screen", strings.NewReader(`{"tickers":["NVDA","MSFT"],"top_n":1}`))
		rec := httptest.NewRecorder()
		h.Screen(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"universe":"custom"`)
		assert.Contains(t, body, `"config_hash":"testhash"`)
		assert.Contains(t, body, `"top_n":1`)
	})

	t.Run("named universe via supplier", func(t *testing.T) {
		suppliers := map[string]contracts.UniverseSupplier{
			"sp500": &fakeSupplier{entries: []contracts.UniverseEntry{{Ticker: "NVDA", Name: "NVIDIA"}}},
		}
		h := newScreenHandler(provider, suppliers)

		req := httptest.NewRequest("POST", "/api/screen", strings.NewReader(`{"universe":"sp500"}`))
		rec := httptest.NewRecorder()
		h.Screen(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"universe":"sp500"`)
		assert.Contains(t, rec.Body.String(), "NVIDIA")
	})

	t.Run("invalid body", func(t *testing.T) {
		h := newScreenHandler(provider, nil)

		rec := httptest.NewRecorder()
		h.Screen(rec, httptest.NewRequest("POST", "/api/screen", strings.NewReader("{broken")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("neither universe nor tickers", func(t *testing.T) {
		h := newScreenHandler(provider, nil)

		rec := httptest.NewRecorder()
		h.Screen(rec, httptest.NewRequest("POST", "/api/screen", strings.NewReader("{}")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown universe", func(t *testing.T) {
		h := newScreenHandler(provider, map[string]contracts.UniverseSupplier{})

		rec := httptest.NewRecorder()
		h.Screen(rec, httptest.NewRequest("POST", "/api/screen", strings.NewReader(`{"universe":"nope"}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider failure", func(t *testing.T) {
		h := newScreenHandler(&fakeProvider{err: errors.New("network down")}, nil)

		rec := httptest.NewRecorder()
		h.Screen(rec, httptest.NewRequest("POST", "/api/screen", strings.NewReader(`{"tickers":["NVDA"]}`)))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestScreenHandler_Stream(t *testing.T) {
	provider := &fakeProvider{table: contracts.PriceTable{
		"NVDA": uptrend(260),
		"MSFT": uptrend(260),
	}}
	h := newScreenHandler(provider, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(ScreenRequest{Tickers: []string{"NVDA", "MSFT"}}))

	var progressFrames int
	for {
		var msg streamMessage
		require.NoError(t, conn.ReadJSON(&msg))

		switch msg.Type {
		case "progress":
			progressFrames++
			assert.Equal(t, 2, msg.Total)
		case "result":
			assert.Equal(t, 2, progressFrames, "one progress frame per ticker")
			require.NotNil(t, msg.Result)
			assert.Len(t, msg.Result.Report.Rows, 2)
			return
		case "error":
			t.Fatalf("unexpected error frame: %s", msg.Message)
		}
	}
}

func TestContextHandler_Analyze(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewContextHandler(&fakeAnalyzer{result: &contracts.MarketContext{
			Regime: contracts.RegimeRiskOn,
		}}, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Analyze(rec, httptest.NewRequest("GET", "/api/context?tickers=NVDA,MSFT", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "RISK_ON")
	})

	t.Run("analyzer failure", func(t *testing.T) {
		h := NewContextHandler(&fakeAnalyzer{err: errors.New("network down")}, logger.NewNop())

		rec := httptest.NewRecorder()
		h.Analyze(rec, httptest.NewRequest("GET", "/api/context", nil))
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestUniverseHandler_Get(t *testing.T) {
	suppliers := map[string]contracts.UniverseSupplier{
		"sp500": &fakeSupplier{entries: []contracts.UniverseEntry{{Ticker: "MMM", Name: "3M"}}},
		"down":  &fakeSupplier{err: errors.New("scrape failed")},
	}
	h := NewUniverseHandler(suppliers, logger.NewNop())

	get := func(name string) *httptest.ResponseRecorder {
		req := mux.SetURLVars(httptest.NewRequest("GET", "/api/universe/"+name, nil), map[string]string{"name": name})
		rec := httptest.NewRecorder()
		h.Get(rec, req)
		return rec
	}

	t.Run("known universe", func(t *testing.T) {
		rec := get("sp500")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"count":1`)
		assert.Contains(t, rec.Body.String(), "MMM")
	})

	t.Run("unknown universe", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get("nope").Code)
	})

	t.Run("supplier failure", func(t *testing.T) {
		assert.Equal(t, http.StatusBadGateway, get("down").Code)
	})
}
