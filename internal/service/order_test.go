package service

import (
	"errors"
	"testing"

	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/efreitasn/stockmatch/internal/engine"
	"github.com/efreitasn/stockmatch/internal/store"
)

func newTestOrderService() *OrderService {
	registry := engine.NewTickerRegistry()
	trades := store.NewTradeStore()
	eng := engine.NewEngine(registry, trades, nil)
	return NewOrderService(eng)
}

func TestOrderService_SubmitOrder_Valid(t *testing.T) {
	svc := newTestOrderService()

	order, err := svc.SubmitOrder(SubmitOrderRequest{
		Side:     domain.SideBuy,
		Ticker:   "AAPL",
		Quantity: 10,
		Price:    125.5,
	})
	if err != nil {
		t.Fatalf("SubmitOrder() error = %v", err)
	}
	if order.ID == "" {
		t.Error("expected order_id to be assigned")
	}
}

func TestOrderService_SubmitOrder_Invalid(t *testing.T) {
	svc := newTestOrderService()

	_, err := svc.SubmitOrder(SubmitOrderRequest{
		Side:     domain.SideBuy,
		Ticker:   "AAPL",
		Quantity: 0,
		Price:    100.0,
	})
	if !errors.Is(err, domain.ErrInvalidOrder) {
		t.Errorf("SubmitOrder() error = %v, want ErrInvalidOrder", err)
	}
}

func TestOrderService_MatchFlow(t *testing.T) {
	svc := newTestOrderService()

	svc.SubmitOrder(SubmitOrderRequest{Side: domain.SideSell, Ticker: "AAPL", Quantity: 50, Price: 120.0})
	svc.SubmitOrder(SubmitOrderRequest{Side: domain.SideBuy, Ticker: "AAPL", Quantity: 30, Price: 125.0})

	ev := svc.MatchTicker("AAPL")
	if ev == nil {
		t.Fatal("MatchTicker() = nil, want a match")
	}
	if ev.MatchedQuantity != 30 {
		t.Errorf("MatchedQuantity = %d, want 30", ev.MatchedQuantity)
	}

	// Nothing left to match.
	if ev := svc.MatchTicker("AAPL"); ev != nil {
		t.Errorf("second MatchTicker() = %+v, want nil", ev)
	}
}

func TestOrderService_MatchAll(t *testing.T) {
	svc := newTestOrderService()

	svc.SubmitOrder(SubmitOrderRequest{Side: domain.SideSell, Ticker: "AAPL", Quantity: 10, Price: 120.0})
	svc.SubmitOrder(SubmitOrderRequest{Side: domain.SideBuy, Ticker: "AAPL", Quantity: 10, Price: 125.0})
	svc.SubmitOrder(SubmitOrderRequest{Side: domain.SideSell, Ticker: "GOOG", Quantity: 5, Price: 90.0})
	svc.SubmitOrder(SubmitOrderRequest{Side: domain.SideBuy, Ticker: "GOOG", Quantity: 5, Price: 95.0})

	events := svc.MatchAll()
	if len(events) != 2 {
		t.Errorf("MatchAll() produced %d events, want 2", len(events))
	}
}
