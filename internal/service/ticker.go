package service

import (
	"sort"

	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/efreitasn/stockmatch/internal/engine"
	"github.com/efreitasn/stockmatch/internal/store"
)

// BookSnapshot is a depth view of one ticker's order book.
type BookSnapshot struct {
	Ticker    string
	Buys      []engine.PriceLevel
	Sells     []engine.PriceLevel
	BuyCount  int
	SellCount int
}

// TickerService serves read-only queries over tickers, books, and the
// match history.
type TickerService struct {
	registry    *engine.TickerRegistry
	trades      *store.TradeStore
	depth       int
	tradesLimit int
}

// NewTickerService creates a TickerService that reports up to depth
// aggregated price levels per book side and up to tradesLimit events
// per recent-trades query.
func NewTickerService(registry *engine.TickerRegistry, trades *store.TradeStore, depth, tradesLimit int) *TickerService {
	return &TickerService{
		registry:    registry,
		trades:      trades,
		depth:       depth,
		tradesLimit: tradesLimit,
	}
}

// ListTickers returns the known ticker symbols in sorted order.
func (s *TickerService) ListTickers() []string {
	tickers := s.registry.AllTickers()
	sort.Strings(tickers)
	return tickers
}

// GetBook returns a depth snapshot of a ticker's book. The second
// return value is false when the ticker has never been referenced.
func (s *TickerService) GetBook(ticker string) (*BookSnapshot, bool) {
	book, ok := s.registry.Lookup(ticker)
	if !ok {
		return nil, false
	}
	return &BookSnapshot{
		Ticker:    ticker,
		Buys:      book.TopBuys(s.depth),
		Sells:     book.TopSells(s.depth),
		BuyCount:  book.BuyCount(),
		SellCount: book.SellCount(),
	}, true
}

// ListTrades returns the match history for a ticker in chronological
// order. Unknown tickers yield an empty history, not an error.
func (s *TickerService) ListTrades(ticker string) []*domain.MatchEvent {
	return s.trades.ListByTicker(ticker)
}

// RecentTrades returns the newest matches across all tickers, newest
// first. A non-positive limit falls back to the configured default, and
// the configured default also caps oversized requests.
func (s *TickerService) RecentTrades(limit int) []*domain.MatchEvent {
	if limit <= 0 || limit > s.tradesLimit {
		limit = s.tradesLimit
	}
	return s.trades.Recent(limit)
}
