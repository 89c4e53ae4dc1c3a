package engine

import (
	"sync"
	"time"

	"github.com/efreitasn/stockmatch/internal/domain"
	"github.com/google/btree"
)

// bookEntry is a single order resting on one side of the book.
type bookEntry struct {
	Price       float64
	SubmittedAt time.Time
	OrderID     string
	Order       *domain.Order
}

// PriceLevel is an aggregated price level in a book depth snapshot.
type PriceLevel struct {
	Price         float64
	TotalQuantity int64
	OrderCount    int
}

// buyLess defines ordering for the buy side: price descending, then
// submitted_at ascending, then order_id ascending. Min() returns the
// highest-priced buy.
func buyLess(a, b bookEntry) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.OrderID < b.OrderID
}

// sellLess defines ordering for the sell side: price ascending, then
// submitted_at ascending, then order_id ascending. Min() returns the
// lowest-priced sell.
func sellLess(a, b bookEntry) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.OrderID < b.OrderID
}

// OrderBook holds the resting buy and sell orders for a single ticker.
// Both sides are B-trees with a secondary index by order ID, guarded by
// one RWMutex so a match decision and both removals share a single
// critical section.
type OrderBook struct {
	ticker string
	mu     sync.RWMutex
	buys   *btree.BTreeG[bookEntry]
	sells  *btree.BTreeG[bookEntry]
	index  map[string]bookEntry // order_id → entry
}

// NewOrderBook creates an empty order book for the given ticker.
func NewOrderBook(ticker string) *OrderBook {
	const degree = 32
	return &OrderBook{
		ticker: ticker,
		buys:   btree.NewG[bookEntry](degree, buyLess),
		sells:  btree.NewG[bookEntry](degree, sellLess),
		index:  make(map[string]bookEntry),
	}
}

// Ticker returns the symbol this book belongs to.
func (ob *OrderBook) Ticker() string {
	return ob.ticker
}

// Insert adds an order to the side matching its Side. There is no
// capacity bound; the write lock is held only for the insert itself,
// never across a scan.
func (ob *OrderBook) Insert(order *domain.Order) {
	entry := bookEntry{
		Price:       order.Price,
		SubmittedAt: order.SubmittedAt,
		OrderID:     order.ID,
		Order:       order,
	}

	ob.mu.Lock()
	defer ob.mu.Unlock()

	if order.Side == domain.SideBuy {
		ob.buys.ReplaceOrInsert(entry)
	} else {
		ob.sells.ReplaceOrInsert(entry)
	}
	ob.index[order.ID] = entry
}

// PeekLowestSell returns the resting sell with the minimal price, or
// false if the sell side is empty. Among equal-priced sells the earliest
// submitted wins the tie; callers must treat the result as a candidate
// only, validated later by TryAtomicMatch.
func (ob *OrderBook) PeekLowestSell() (*domain.Order, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	entry, ok := ob.sells.Min()
	if !ok {
		return nil, false
	}
	return entry.Order, true
}

// FindCompatibleBuy returns the first buy scanned whose price is at
// least maxPrice, or false if no buy qualifies. The buy side iterates
// price-descending, so the first entry scanned is the highest bidder
// and decides the whole scan.
func (ob *OrderBook) FindCompatibleBuy(maxPrice float64) (*domain.Order, bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()

	entry, ok := ob.buys.Min()
	if !ok || entry.Price < maxPrice {
		return nil, false
	}
	return entry.Order, true
}

// TryAtomicMatch removes sell and buy from the book as a single
// all-or-nothing transaction. Under the write lock it verifies both
// orders are still resting; if either has already been taken by a
// concurrent match, it removes nothing and returns false, leaving both
// candidates exactly as they were.
func (ob *OrderBook) TryAtomicMatch(sell, buy *domain.Order) bool {
	ob.mu.Lock()
	defer ob.mu.Unlock()

	sellEntry, sellOK := ob.index[sell.ID]
	buyEntry, buyOK := ob.index[buy.ID]
	if !sellOK || !buyOK {
		return false
	}

	delete(ob.index, sell.ID)
	delete(ob.index, buy.ID)
	ob.sells.Delete(sellEntry)
	ob.buys.Delete(buyEntry)
	return true
}

// Contains reports whether an order is still resting on the book.
func (ob *OrderBook) Contains(orderID string) bool {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	_, ok := ob.index[orderID]
	return ok
}

// BuyCount returns the number of resting buy orders.
func (ob *OrderBook) BuyCount() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.buys.Len()
}

// SellCount returns the number of resting sell orders.
func (ob *OrderBook) SellCount() int {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return ob.sells.Len()
}

// TopBuys returns up to n aggregated price levels from the buy side,
// ordered by price descending.
func (ob *OrderBook) TopBuys(n int) []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return topLevels(ob.buys, n)
}

// TopSells returns up to n aggregated price levels from the sell side,
// ordered by price ascending.
func (ob *OrderBook) TopSells(n int) []PriceLevel {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	return topLevels(ob.sells, n)
}

// topLevels iterates a side in order and aggregates entries into at
// most n price levels. Caller holds the lock.
func topLevels(tree *btree.BTreeG[bookEntry], n int) []PriceLevel {
	if n <= 0 {
		return nil
	}
	levels := make([]PriceLevel, 0, n)
	tree.Ascend(func(entry bookEntry) bool {
		if len(levels) > 0 && levels[len(levels)-1].Price == entry.Price {
			levels[len(levels)-1].TotalQuantity += entry.Order.Quantity
			levels[len(levels)-1].OrderCount++
			return true
		}
		if len(levels) >= n {
			return false
		}
		levels = append(levels, PriceLevel{
			Price:         entry.Price,
			TotalQuantity: entry.Order.Quantity,
			OrderCount:    1,
		})
		return true
	})
	return levels
}

// WalkSells iterates resting sells in price-ascending order under the
// read lock. The callback returns true to continue, false to stop.
func (ob *OrderBook) WalkSells(fn func(*domain.Order) bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	ob.sells.Ascend(func(entry bookEntry) bool {
		return fn(entry.Order)
	})
}

// WalkBuys iterates resting buys in price-descending order under the
// read lock. The callback returns true to continue, false to stop.
func (ob *OrderBook) WalkBuys(fn func(*domain.Order) bool) {
	ob.mu.RLock()
	defer ob.mu.RUnlock()
	ob.buys.Ascend(func(entry bookEntry) bool {
		return fn(entry.Order)
	})
}
