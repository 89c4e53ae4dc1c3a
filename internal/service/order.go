package service

import (
	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/efreitasn/stockmatch/internal/engine"
)

// SubmitOrderRequest represents the input for order submission.
type SubmitOrderRequest struct {
	Side     domain.Side
	Ticker   string
	Quantity int64
	Price    float64
}

// OrderService handles order submission and matching.
type OrderService struct {
	engine *engine.Engine
}

// NewOrderService creates a new OrderService with the given engine.
func NewOrderService(eng *engine.Engine) *OrderService {
	return &OrderService{engine: eng}
}

// SubmitOrder validates the request and rests the order on its book.
// Field validation is delegated to the engine, which surfaces
// domain.ErrInvalidOrder for bad quantity, price, side, or ticker.
func (s *OrderService) SubmitOrder(req SubmitOrderRequest) (*domain.Order, error) {
	return s.engine.AddOrder(req.Side, req.Ticker, req.Quantity, req.Price)
}

// MatchTicker attempts one match on the given ticker. A nil event means
// no match was possible or a concurrent matcher won the race.
func (s *OrderService) MatchTicker(ticker string) *domain.MatchEvent {
	return s.engine.MatchTicker(ticker)
}

// MatchAll sweeps every known ticker and returns the matches produced.
func (s *OrderService) MatchAll() []*domain.MatchEvent {
	return s.engine.MatchAll()
}
