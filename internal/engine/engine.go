package engine

import (
	"time"

	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/efreitasn/stockmatch/internal/store"
	"github.com/google/uuid"
)

// MatchNotifier is an interface for dispatching match notifications from
// the engine layer without depending on the service layer directly.
// Implementations must not block.
type MatchNotifier interface {
	NotifyMatch(ev *domain.MatchEvent)
}

// Engine orchestrates order submission and matching across tickers.
// All methods are safe for concurrent use from unboundedly many
// goroutines; the engine is purely reactive and never blocks on I/O.
type Engine struct {
	registry *TickerRegistry
	trades   *store.TradeStore
	notifier MatchNotifier // may be nil
}

// NewEngine creates an Engine backed by the given registry and trade
// log. notifier may be nil when no external match notifications are
// wanted.
func NewEngine(registry *TickerRegistry, trades *store.TradeStore, notifier MatchNotifier) *Engine {
	return &Engine{
		registry: registry,
		trades:   trades,
		notifier: notifier,
	}
}

// Registry exposes the ticker registry, for depth and listing queries.
func (e *Engine) Registry() *TickerRegistry {
	return e.registry
}

// AddOrder validates and rests a new order on its ticker's book. It
// returns domain.ErrInvalidOrder (wrapped) when the quantity or price is
// non-positive or the ticker is empty or malformed; on failure no book
// is touched. The ticker's book is created lazily on first use.
func (e *Engine) AddOrder(side domain.Side, ticker string, quantity int64, price float64) (*domain.Order, error) {
	order, err := domain.NewOrder(side, ticker, quantity, price)
	if err != nil {
		return nil, err
	}

	book := e.registry.GetOrCreate(ticker)
	book.Insert(order)
	return order, nil
}

// MatchTicker attempts at most one buy/sell pairing on the given
// ticker's book. It returns nil without error when the ticker has never
// been referenced, when either side has no eligible order, or when a
// concurrent matcher wins the race for the same candidates — losing the
// race is an expected outcome, not a failure, and is never retried
// within one call.
func (e *Engine) MatchTicker(ticker string) *domain.MatchEvent {
	book, ok := e.registry.Lookup(ticker)
	if !ok {
		return nil
	}

	sell, ok := book.PeekLowestSell()
	if !ok {
		return nil
	}
	buy, ok := book.FindCompatibleBuy(sell.Price)
	if !ok {
		return nil
	}
	if !book.TryAtomicMatch(sell, buy) {
		return nil
	}

	ev := &domain.MatchEvent{
		MatchID:         uuid.New().String(),
		Ticker:          ticker,
		BuyOrderID:      buy.ID,
		SellOrderID:     sell.ID,
		BuyPrice:        buy.Price,
		SellPrice:       sell.Price,
		MatchedQuantity: min(buy.Quantity, sell.Quantity),
		ExecutedAt:      time.Now(),
	}

	e.trades.Append(ev)
	if e.notifier != nil {
		e.notifier.NotifyMatch(ev)
	}
	return ev
}

// MatchAll sweeps every known ticker, attempting a single match on each
// book observed with both sides non-empty. It returns the events
// produced during the sweep. There is no cross-ticker lock; matches on
// different tickers interleave freely with concurrent callers.
func (e *Engine) MatchAll() []*domain.MatchEvent {
	var events []*domain.MatchEvent
	for _, ticker := range e.registry.AllTickers() {
		book, ok := e.registry.Lookup(ticker)
		if !ok {
			continue
		}
		if book.BuyCount() == 0 || book.SellCount() == 0 {
			continue
		}
		if ev := e.MatchTicker(ticker); ev != nil {
			events = append(events, ev)
		}
	}
	return events
}
