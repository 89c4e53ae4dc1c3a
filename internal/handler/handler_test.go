package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/efreitasn/stockmatch/internal/engine"
	"github.com/efreitasn/stockmatch/internal/service"
	"github.com/efreitasn/stockmatch/internal/store"
)

// testEnv bundles all dependencies for handler integration tests.
type testEnv struct {
	router     http.Handler
	orderSvc   *service.OrderService
	tickerSvc  *service.TickerService
	webhookSvc *service.WebhookService
}

func newTestEnv() *testEnv {
	trades := store.NewTradeStore()
	webhooks := store.NewWebhookStore()

	webhookSvc := service.NewWebhookService(webhooks, time.Second)
	registry := engine.NewTickerRegistry()
	eng := engine.NewEngine(registry, trades, webhookSvc)

	orderSvc := service.NewOrderService(eng)
	tickerSvc := service.NewTickerService(registry, trades, 10, 100)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(orderSvc, tickerSvc, webhookSvc, logger)

	return &testEnv{
		router:     router,
		orderSvc:   orderSvc,
		tickerSvc:  tickerSvc,
		webhookSvc: webhookSvc,
	}
}

// doJSON sends a JSON request and returns the recorder.
func (env *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// doRaw sends a raw request with optional content-type override.
func (env *testEnv) doRaw(t *testing.T, method, path, contentType, rawBody string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(rawBody))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	return rr
}

// decodeJSON decodes the response body into v.
func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}

// submitOrder is a helper that submits an order via the API.
func (env *testEnv) submitOrder(t *testing.T, side, ticker string, qty int64, price float64) map[string]any {
	t.Helper()
	rr := env.doJSON(t, http.MethodPost, "/orders", map[string]any{
		"side":     side,
		"ticker":   ticker,
		"quantity": qty,
		"price":    price,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit order: status %d (body: %s)", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	decodeJSON(t, rr, &resp)
	return resp
}

func TestHealthz(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", rr.Code)
	}
}

func TestSubmitOrder_Created(t *testing.T) {
	env := newTestEnv()

	resp := env.submitOrder(t, "buy", "AAPL", 10, 125.5)
	if resp["order_id"] == "" {
		t.Error("expected order_id in response")
	}
	if resp["ticker"] != "AAPL" {
		t.Errorf("ticker = %v, want AAPL", resp["ticker"])
	}
}

func TestSubmitOrder_InvalidOrder(t *testing.T) {
	env := newTestEnv()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"zero quantity", map[string]any{"side": "buy", "ticker": "AAPL", "quantity": 0, "price": 100.0}},
		{"negative price", map[string]any{"side": "buy", "ticker": "AAPL", "quantity": 10, "price": -5.0}},
		{"empty ticker", map[string]any{"side": "buy", "ticker": "", "quantity": 10, "price": 100.0}},
		{"bad side", map[string]any{"side": "hold", "ticker": "AAPL", "quantity": 10, "price": 100.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.doJSON(t, http.MethodPost, "/orders", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rr.Code, rr.Body.String())
			}
			var errResp map[string]string
			decodeJSON(t, rr, &errResp)
			if errResp["error"] != "invalid_order" {
				t.Errorf("error code = %q, want invalid_order", errResp["error"])
			}
		})
	}
}

func TestSubmitOrder_MalformedJSON(t *testing.T) {
	env := newTestEnv()
	rr := env.doRaw(t, http.MethodPost, "/orders", "application/json", "{not json")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestSubmitOrder_WrongContentType(t *testing.T) {
	env := newTestEnv()
	rr := env.doRaw(t, http.MethodPost, "/orders", "text/plain", `{"side":"buy"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestMatchTicker_NoMatch(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, http.MethodPost, "/tickers/AAPL/match", nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 for an unmatched ticker", rr.Code)
	}
}

func TestMatchTicker_Match(t *testing.T) {
	env := newTestEnv()
	env.submitOrder(t, "sell", "AAPL", 50, 120.0)
	env.submitOrder(t, "buy", "AAPL", 30, 125.0)

	rr := env.doJSON(t, http.MethodPost, "/tickers/AAPL/match", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}

	var ev map[string]any
	decodeJSON(t, rr, &ev)
	if ev["ticker"] != "AAPL" {
		t.Errorf("ticker = %v, want AAPL", ev["ticker"])
	}
	if ev["sell_price"] != 120.0 || ev["buy_price"] != 125.0 {
		t.Errorf("prices = %v/%v, want 120/125", ev["sell_price"], ev["buy_price"])
	}
	if ev["matched_quantity"] != float64(30) {
		t.Errorf("matched_quantity = %v, want 30", ev["matched_quantity"])
	}
}

func TestMatchAll_Sweep(t *testing.T) {
	env := newTestEnv()
	env.submitOrder(t, "sell", "AAPL", 10, 120.0)
	env.submitOrder(t, "buy", "AAPL", 10, 125.0)
	env.submitOrder(t, "sell", "GOOG", 5, 90.0)
	env.submitOrder(t, "buy", "GOOG", 5, 95.0)

	rr := env.doJSON(t, http.MethodPost, "/match", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Matches []map[string]any `json:"matches"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Matches) != 2 {
		t.Errorf("sweep produced %d matches, want 2", len(resp.Matches))
	}
}

func TestListTickers(t *testing.T) {
	env := newTestEnv()
	env.submitOrder(t, "buy", "GOOG", 10, 95.0)
	env.submitOrder(t, "buy", "AAPL", 10, 125.0)

	rr := env.doJSON(t, http.MethodGet, "/tickers", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Tickers []string `json:"tickers"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Tickers) != 2 || resp.Tickers[0] != "AAPL" {
		t.Errorf("tickers = %v, want [AAPL GOOG]", resp.Tickers)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, http.MethodGet, "/tickers/AAPL/book", nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestGetBook_Depth(t *testing.T) {
	env := newTestEnv()
	env.submitOrder(t, "buy", "AAPL", 10, 124.0)
	env.submitOrder(t, "buy", "AAPL", 5, 124.0)
	env.submitOrder(t, "sell", "AAPL", 7, 130.0)

	rr := env.doJSON(t, http.MethodGet, "/tickers/AAPL/book", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Buys      []map[string]any `json:"buys"`
		Sells     []map[string]any `json:"sells"`
		BuyCount  int              `json:"buy_count"`
		SellCount int              `json:"sell_count"`
	}
	decodeJSON(t, rr, &resp)
	if resp.BuyCount != 2 || resp.SellCount != 1 {
		t.Errorf("counts = %d/%d, want 2/1", resp.BuyCount, resp.SellCount)
	}
	if len(resp.Buys) != 1 || resp.Buys[0]["total_quantity"] != float64(15) {
		t.Errorf("buy levels = %v, want one level with qty 15", resp.Buys)
	}
}

func TestListTrades(t *testing.T) {
	env := newTestEnv()
	env.submitOrder(t, "sell", "AAPL", 10, 120.0)
	env.submitOrder(t, "buy", "AAPL", 10, 125.0)
	env.doJSON(t, http.MethodPost, "/tickers/AAPL/match", nil)

	rr := env.doJSON(t, http.MethodGet, "/tickers/AAPL/trades", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var resp struct {
		Trades []map[string]any `json:"trades"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Trades) != 1 {
		t.Errorf("trades = %d, want 1", len(resp.Trades))
	}
}

func TestRecentTrades(t *testing.T) {
	env := newTestEnv()
	for _, ticker := range []string{"AAPL", "GOOG"} {
		env.submitOrder(t, "sell", ticker, 10, 120.0)
		env.submitOrder(t, "buy", ticker, 10, 125.0)
	}
	env.doJSON(t, http.MethodPost, "/match", nil)

	rr := env.doJSON(t, http.MethodGet, "/trades?limit=1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var resp struct {
		Trades []map[string]any `json:"trades"`
	}
	decodeJSON(t, rr, &resp)
	if len(resp.Trades) != 1 {
		t.Errorf("trades = %d, want 1 with limit=1", len(resp.Trades))
	}

	// Omitted limit returns everything under the configured default.
	rr = env.doJSON(t, http.MethodGet, "/trades", nil)
	decodeJSON(t, rr, &resp)
	if len(resp.Trades) != 2 {
		t.Errorf("trades = %d, want 2 without a limit", len(resp.Trades))
	}
}

func TestRecentTrades_BadLimit(t *testing.T) {
	env := newTestEnv()
	for _, limit := range []string{"0", "-3", "abc"} {
		rr := env.doJSON(t, http.MethodGet, "/trades?limit="+limit, nil)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: status = %d, want 400", limit, rr.Code)
		}
	}
}

func TestWebhookLifecycle(t *testing.T) {
	env := newTestEnv()

	rr := env.doJSON(t, http.MethodPost, "/webhooks", map[string]any{
		"ticker": "AAPL",
		"url":    "https://example.com/hook",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create webhook: status %d (body: %s)", rr.Code, rr.Body.String())
	}
	var wh map[string]any
	decodeJSON(t, rr, &wh)
	id, _ := wh["webhook_id"].(string)
	if id == "" {
		t.Fatal("expected webhook_id in response")
	}

	// Idempotent re-registration.
	rr = env.doJSON(t, http.MethodPost, "/webhooks", map[string]any{
		"ticker": "AAPL",
		"url":    "https://example.com/hook",
	})
	if rr.Code != http.StatusOK {
		t.Errorf("re-register: status %d, want 200", rr.Code)
	}

	rr = env.doJSON(t, http.MethodGet, "/webhooks", nil)
	var list struct {
		Webhooks []map[string]any `json:"webhooks"`
	}
	decodeJSON(t, rr, &list)
	if len(list.Webhooks) != 1 {
		t.Errorf("webhooks = %d, want 1", len(list.Webhooks))
	}

	rr = env.doJSON(t, http.MethodDelete, "/webhooks/"+id, nil)
	if rr.Code != http.StatusNoContent {
		t.Errorf("delete: status %d, want 204", rr.Code)
	}

	rr = env.doJSON(t, http.MethodDelete, "/webhooks/"+id, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete: status %d, want 404", rr.Code)
	}
}

func TestWebhook_ValidationError(t *testing.T) {
	env := newTestEnv()
	rr := env.doJSON(t, http.MethodPost, "/webhooks", map[string]any{
		"ticker": "AAPL",
		"url":    "not-a-url",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}
