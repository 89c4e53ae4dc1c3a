package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/efreitasn/stockmatch/internal/service"
	"github.com/go-chi/chi/v5"
)

// OrderHandler handles HTTP requests for order submission and matching.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /orders.
type submitOrderRequest struct {
	Side     string  `json:"side"`
	Ticker   string  `json:"ticker"`
	Quantity int64   `json:"quantity"`
	Price    float64 `json:"price"`
}

// orderResponse is the JSON response for a submitted order.
type orderResponse struct {
	OrderID     string  `json:"order_id"`
	Side        string  `json:"side"`
	Ticker      string  `json:"ticker"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
	SubmittedAt string  `json:"submitted_at"`
}

// matchEventResponse is the JSON representation of a match event.
type matchEventResponse struct {
	MatchID         string  `json:"match_id"`
	Ticker          string  `json:"ticker"`
	BuyOrderID      string  `json:"buy_order_id"`
	SellOrderID     string  `json:"sell_order_id"`
	BuyPrice        float64 `json:"buy_price"`
	SellPrice       float64 `json:"sell_price"`
	MatchedQuantity int64   `json:"matched_quantity"`
	ExecutedAt      string  `json:"executed_at"`
}

// SubmitOrder handles POST /orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.SubmitOrder(service.SubmitOrderRequest{
		Side:     domain.Side(req.Side),
		Ticker:   req.Ticker,
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		mapOrderError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// MatchTicker handles POST /tickers/{ticker}/match. A 204 means no
// match was possible on this attempt.
func (h *OrderHandler) MatchTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	ev := h.orderSvc.MatchTicker(ticker)
	if ev == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	WriteJSON(w, http.StatusOK, buildMatchEventResponse(ev))
}

// MatchAll handles POST /match — one sweep across all known tickers.
func (h *OrderHandler) MatchAll(w http.ResponseWriter, r *http.Request) {
	events := h.orderSvc.MatchAll()

	resp := make([]matchEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, buildMatchEventResponse(ev))
	}
	WriteJSON(w, http.StatusOK, map[string]any{"matches": resp})
}

// mapOrderError maps service errors to HTTP responses.
func mapOrderError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidOrder):
		WriteError(w, http.StatusBadRequest, "invalid_order", err.Error())
	case errors.As(err, &validationErr):
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func buildOrderResponse(o *domain.Order) orderResponse {
	return orderResponse{
		OrderID:     o.ID,
		Side:        string(o.Side),
		Ticker:      o.Ticker,
		Quantity:    o.Quantity,
		Price:       o.Price,
		SubmittedAt: o.SubmittedAt.UTC().Format(time.RFC3339Nano),
	}
}

func buildMatchEventResponse(ev *domain.MatchEvent) matchEventResponse {
	return matchEventResponse{
		MatchID:         ev.MatchID,
		Ticker:          ev.Ticker,
		BuyOrderID:      ev.BuyOrderID,
		SellOrderID:     ev.SellOrderID,
		BuyPrice:        ev.BuyPrice,
		SellPrice:       ev.SellPrice,
		MatchedQuantity: ev.MatchedQuantity,
		ExecutedAt:      ev.ExecutedAt.UTC().Format(time.RFC3339Nano),
	}
}
