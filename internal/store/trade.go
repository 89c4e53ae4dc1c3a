package store

import (
	"sync"

	"github.com/efreitasn/stockmatch/internal/domain"
)

// TradeStore is a thread-safe in-memory log of match events, keyed by
// ticker. Events are append-only and chronological per ticker.
type TradeStore struct {
	mu       sync.RWMutex
	byTicker map[string][]*domain.MatchEvent // ticker → events (chronological)
	all      []*domain.MatchEvent            // global append order
}

// NewTradeStore creates an empty TradeStore.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		byTicker: make(map[string][]*domain.MatchEvent),
	}
}

// Append adds a match event to the ticker's chronological list.
func (s *TradeStore) Append(ev *domain.MatchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byTicker[ev.Ticker] = append(s.byTicker[ev.Ticker], ev)
	s.all = append(s.all, ev)
}

// ListByTicker returns all match events for a ticker in chronological
// order. Returns an empty slice if no matches exist for the ticker.
func (s *TradeStore) ListByTicker(ticker string) []*domain.MatchEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.byTicker[ticker]
	if events == nil {
		return []*domain.MatchEvent{}
	}

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]*domain.MatchEvent, len(events))
	copy(result, events)
	return result
}

// Recent returns up to limit of the most recent match events across all
// tickers, newest first.
func (s *TradeStore) Recent(limit int) []*domain.MatchEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.all) {
		limit = len(s.all)
	}
	result := make([]*domain.MatchEvent, 0, limit)
	for i := len(s.all) - 1; i >= len(s.all)-limit; i-- {
		result = append(result, s.all[i])
	}
	return result
}

// Count returns the total number of match events recorded.
func (s *TradeStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.all)
}
