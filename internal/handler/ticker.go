package handler

import (
	"net/http"
	"strconv"

	"github.com/efreitasn/stockmatch/internal/engine"
	"github.com/efreitasn/stockmatch/internal/service"
	"github.com/go-chi/chi/v5"
)

// TickerHandler handles HTTP requests for ticker queries.
type TickerHandler struct {
	tickerSvc *service.TickerService
}

// NewTickerHandler creates a new TickerHandler.
func NewTickerHandler(tickerSvc *service.TickerService) *TickerHandler {
	return &TickerHandler{tickerSvc: tickerSvc}
}

// priceLevelResponse is a single aggregated price level.
type priceLevelResponse struct {
	Price         float64 `json:"price"`
	TotalQuantity int64   `json:"total_quantity"`
	OrderCount    int     `json:"order_count"`
}

// bookResponse is the JSON response for GET /tickers/{ticker}/book.
type bookResponse struct {
	Ticker    string               `json:"ticker"`
	Buys      []priceLevelResponse `json:"buys"`
	Sells     []priceLevelResponse `json:"sells"`
	BuyCount  int                  `json:"buy_count"`
	SellCount int                  `json:"sell_count"`
}

// ListTickers handles GET /tickers.
func (h *TickerHandler) ListTickers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string][]string{"tickers": h.tickerSvc.ListTickers()})
}

// GetBook handles GET /tickers/{ticker}/book. An unreferenced ticker
// yields 404; matching it would be a no-op, but a depth query on a book
// that does not exist is a miss.
func (h *TickerHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	snapshot, ok := h.tickerSvc.GetBook(ticker)
	if !ok {
		WriteError(w, http.StatusNotFound, "ticker_not_found", "No orders have been submitted for this ticker")
		return
	}

	WriteJSON(w, http.StatusOK, bookResponse{
		Ticker:    snapshot.Ticker,
		Buys:      buildPriceLevels(snapshot.Buys),
		Sells:     buildPriceLevels(snapshot.Sells),
		BuyCount:  snapshot.BuyCount,
		SellCount: snapshot.SellCount,
	})
}

// ListTrades handles GET /tickers/{ticker}/trades.
func (h *TickerHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	events := h.tickerSvc.ListTrades(ticker)
	resp := make([]matchEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, buildMatchEventResponse(ev))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"trades": resp})
}

// RecentTrades handles GET /trades?limit=N — the newest matches across
// all tickers. An omitted limit uses the configured default.
func (h *TickerHandler) RecentTrades(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events := h.tickerSvc.RecentTrades(limit)
	resp := make([]matchEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, buildMatchEventResponse(ev))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"trades": resp})
}

func buildPriceLevels(levels []engine.PriceLevel) []priceLevelResponse {
	resp := make([]priceLevelResponse, 0, len(levels))
	for _, l := range levels {
		resp = append(resp, priceLevelResponse{
			Price:         l.Price,
			TotalQuantity: l.TotalQuantity,
			OrderCount:    l.OrderCount,
		})
	}
	return resp
}
