package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cryptowallet/internal/adapters/coincap"
	"cryptowallet/internal/adapters/logger"
	opadapter "cryptowallet/internal/adapters/operation"
	priceadapter "cryptowallet/internal/adapters/price"
	"cryptowallet/internal/application/assets"
	pricesvc "cryptowallet/internal/application/price"
	"cryptowallet/internal/application/scheduler"
	"cryptowallet/internal/application/valuation"
	"cryptowallet/internal/domain/date"
	"cryptowallet/internal/domain/errs"
	"cryptowallet/internal/domain/operation"
	"cryptowallet/internal/domain/portfolio"
	httpports "cryptowallet/internal/ports/http"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	handler  http.Handler
	provider *coincap.MockProvider
}

func newTestEnv(t *testing.T, ops ...*operation.Operation) *testEnv {
	t.Helper()

	now := func() time.Time { return testNow }
	log := logger.NewNopLogger()

	ledger := opadapter.NewMemoryLedger(ops...)
	store := priceadapter.NewMemoryStore()
	provider := coincap.NewMockProvider(now)
	history := pricesvc.NewHistoryService(store, provider, log, now)

	handler := NewHandlerAdapter(
		valuation.NewService(ledger, history, log, now),
		assets.NewService(ledger, store, provider, log, now),
		history,
		scheduler.NewPriceSyncJob(ledger, history, log),
		log,
	)
	srv := NewServer(Config{Port: "0"}, handler, log)

	return &testEnv{handler: srv.Handler(), provider: provider}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func btcAdd(amount int64, on string) *operation.Operation {
	return operation.NewOperation("bitcoin", "BTC", decimal.NewFromInt(amount), date.MustParse(on), operation.KindAdd)
}

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "ok", body["status"])
}

func TestAddAsset(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/assets", `{"symbol":"btc","amount":"1.5"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	holding := decode[httpports.Holding](t, w)
	assert.Equal(t, "bitcoin", holding.AssetID)
	assert.Equal(t, "BTC", holding.Symbol)
	assert.True(t, holding.Quantity.Equal(decimal.RequireFromString("1.5")))

	w = env.do(t, http.MethodGet, "/api/v1/operations", "")
	require.Equal(t, http.StatusOK, w.Code)
	ops := decode[[]httpports.Operation](t, w)
	require.Len(t, ops, 1)
	assert.Equal(t, "add", ops[0].Kind)
	assert.Equal(t, "2025-03-10", ops[0].Date)
}

func TestAddAsset_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed body", body: `{"symbol":`, want: http.StatusBadRequest},
		{name: "missing symbol", body: `{"amount":"1"}`, want: http.StatusBadRequest},
		{name: "zero amount", body: `{"symbol":"BTC","amount":"0"}`, want: http.StatusBadRequest},
		{name: "unknown symbol", body: `{"symbol":"NOPE","amount":"1"}`, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			w := env.do(t, http.MethodPost, "/api/v1/assets", tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestEditAndDeleteAsset(t *testing.T) {
	env := newTestEnv(t, btcAdd(2, "2025-03-01"))

	w := env.do(t, http.MethodPut, "/api/v1/assets/BTC", `{"initial_amount":"2","new_amount":"2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[httpports.EditAssetResponse](t, w).Changed)

	w = env.do(t, http.MethodPut, "/api/v1/assets/BTC", `{"initial_amount":"2","new_amount":"3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[httpports.EditAssetResponse](t, w).Changed)

	w = env.do(t, http.MethodDelete, "/api/v1/assets/BTC", `{"amount":"5"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/assets/BTC", `{"amount":"3"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/operations", "")
	assert.Len(t, decode[[]httpports.Operation](t, w), 3)
}

func TestGetPortfolio(t *testing.T) {
	env := newTestEnv(t, btcAdd(2, "2025-03-01"))

	w := env.do(t, http.MethodGet, "/api/v1/portfolio", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	v := decode[httpports.Valuation](t, w)
	assert.Equal(t, "USD", v.Currency)
	assert.Empty(t, v.Failures)
	require.Len(t, v.Holdings, 1)
	require.Len(t, v.History, 10)
	assert.Equal(t, "2025-03-01", v.History[0].Date)
	assert.Equal(t, "2025-03-10", v.History[9].Date)

	spot, err := env.provider.CurrentPrice(context.Background(), "bitcoin")
	require.NoError(t, err)
	assert.True(t, v.TotalValue.Equal(spot.Mul(decimal.NewFromInt(2))), "total %s, spot %s", v.TotalValue, spot)
	assert.True(t, v.Allocation[0].Percent.Equal(decimal.NewFromInt(100)))
}

func TestGetHoldings_OmitsHistory(t *testing.T) {
	env := newTestEnv(t, btcAdd(1, "2025-03-01"))

	w := env.do(t, http.MethodGet, "/api/v1/portfolio/holdings", "")
	require.Equal(t, http.StatusOK, w.Code)

	v := decode[httpports.Valuation](t, w)
	assert.Nil(t, v.History)
	assert.Len(t, v.Holdings, 1)
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv(t, btcAdd(1, "2025-03-01"))

	w := env.do(t, http.MethodGet, "/api/v1/portfolio/history?from=2025-03-05&to=2025-03-07", "")
	require.Equal(t, http.StatusOK, w.Code)

	h := decode[httpports.History](t, w)
	assert.Equal(t, "2025-03-05", h.From)
	assert.Equal(t, "2025-03-07", h.To)
	assert.Len(t, h.Points, 3)

	for _, target := range []string{
		"/api/v1/portfolio/history?from=yesterday",
		"/api/v1/portfolio/history?to=2025-13-01",
		"/api/v1/portfolio/history?from=2025-03-07&to=2025-03-05",
	} {
		w = env.do(t, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestSyncPricesAndCoverage(t *testing.T) {
	env := newTestEnv(t, btcAdd(1, "2025-03-01"))

	w := env.do(t, http.MethodGet, "/api/v1/prices/bitcoin", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[httpports.PriceCoverage](t, w).Points)

	w = env.do(t, http.MethodPost, "/api/v1/prices/sync", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[httpports.SyncReport](t, w)
	assert.Equal(t, 1, report.Assets)
	assert.Empty(t, report.Failures)

	w = env.do(t, http.MethodGet, "/api/v1/prices/bitcoin", "")
	require.Equal(t, http.StatusOK, w.Code)
	coverage := decode[httpports.PriceCoverage](t, w)
	assert.Equal(t, "2025-03-01", coverage.Oldest)
	assert.Equal(t, 10, coverage.Points)
	assert.NotNil(t, coverage.LatestPrice)
}

func TestResetAndRemoveHistory(t *testing.T) {
	env := newTestEnv(t,
		btcAdd(1, "2025-03-01"),
		operation.NewOperation("ethereum", "ETH", decimal.NewFromInt(4), date.MustParse("2025-03-02"), operation.KindAdd),
	)

	w := env.do(t, http.MethodDelete, "/api/v1/operations/bitcoin", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/operations", "")
	ops := decode[[]httpports.Operation](t, w)
	require.Len(t, ops, 1)
	assert.Equal(t, "ethereum", ops[0].AssetID)

	w = env.do(t, http.MethodDelete, "/api/v1/operations", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/operations", "")
	assert.Empty(t, decode[[]httpports.Operation](t, w))
}

func TestListCoins(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/coins", "")
	require.Equal(t, http.StatusOK, w.Code)

	coins := decode[[]httpports.Coin](t, w)
	require.NotEmpty(t, coins)
	assert.Equal(t, "bitcoin", coins[0].ID)
}

type failingValuation struct{ err error }

func (f failingValuation) Calculate(context.Context) (*portfolio.Valuation, error) {
	return nil, f.err
}

func TestGetPortfolio_LedgerFailure(t *testing.T) {
	log := logger.NewNopLogger()
	err := fmt.Errorf("failed to load operations: %w", errs.ErrStorageRead)
	handler := NewHandlerAdapter(failingValuation{err: err}, nil, nil, nil, log)
	srv := NewServer(Config{}, handler, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/portfolio", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode[httpports.ErrorResponse](t, w)
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.Contains(t, body.Message, "storage read failed")
}
