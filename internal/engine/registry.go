package engine

import "sync"

// TickerRegistry is a thread-safe map of ticker symbol → OrderBook.
// Books are created lazily on first reference and live for the process
// lifetime; the map is keyed by the exact ticker string, so two distinct
// symbols can never share a book.
type TickerRegistry struct {
	mu    sync.RWMutex
	books map[string]*OrderBook
}

// NewTickerRegistry creates an empty TickerRegistry.
func NewTickerRegistry() *TickerRegistry {
	return &TickerRegistry{
		books: make(map[string]*OrderBook),
	}
}

// GetOrCreate returns the order book for the given ticker, creating one
// if it doesn't already exist. When two callers race on an unseen
// ticker, exactly one book is retained and visible to both.
func (r *TickerRegistry) GetOrCreate(ticker string) *OrderBook {
	r.mu.RLock()
	book, ok := r.books[ticker]
	r.mu.RUnlock()
	if ok {
		return book
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check after acquiring write lock.
	if book, ok = r.books[ticker]; ok {
		return book
	}
	book = NewOrderBook(ticker)
	r.books[ticker] = book
	return book
}

// Lookup returns the book for a ticker without creating one.
func (r *TickerRegistry) Lookup(ticker string) (*OrderBook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[ticker]
	return book, ok
}

// AllTickers returns a snapshot of the known ticker symbols. Tickers
// registered after the snapshot is taken are not included.
func (r *TickerRegistry) AllTickers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickers := make([]string, 0, len(r.books))
	for ticker := range r.books {
		tickers = append(tickers, ticker)
	}
	return tickers
}
