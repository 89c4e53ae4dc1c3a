package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Side indicates whether an order buys or sells shares.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// tickerRegex constrains ticker symbols to the usual uppercase form.
var tickerRegex = regexp.MustCompile(`^[A-Z]{1,10}$`)

// Order represents a buy or sell instruction resting on a ticker's book.
// An Order is immutable once created: matching removes it from the book,
// it is never mutated in place.
type Order struct {
	ID          string
	Side        Side
	Ticker      string
	Quantity    int64
	Price       float64
	SubmittedAt time.Time
}

// NewOrder validates the submission and constructs an Order with a fresh
// ID and submission timestamp. It returns ErrInvalidOrder (wrapped with
// the failing field) when quantity or price is non-positive, or when the
// ticker is empty or malformed. Validation never touches any book.
func NewOrder(side Side, ticker string, quantity int64, price float64) (*Order, error) {
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("%w: side must be %q or %q", ErrInvalidOrder, SideBuy, SideSell)
	}
	if ticker == "" {
		return nil, fmt.Errorf("%w: ticker must not be empty", ErrInvalidOrder)
	}
	if !tickerRegex.MatchString(ticker) {
		return nil, fmt.Errorf("%w: ticker must match ^[A-Z]{1,10}$", ErrInvalidOrder)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", ErrInvalidOrder)
	}
	// price > 0 also rejects NaN, which fails every comparison.
	if !(price > 0) {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrInvalidOrder)
	}

	return &Order{
		ID:          uuid.New().String(),
		Side:        side,
		Ticker:      ticker,
		Quantity:    quantity,
		Price:       price,
		SubmittedAt: time.Now(),
	}, nil
}
