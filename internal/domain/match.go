package domain

import "time"

// MatchEvent records the atomic pairing of one buy and one sell order.
// MatchedQuantity is the smaller of the two order quantities; the
// remainder on the larger side is discarded with the orders rather than
// re-queued.
type MatchEvent struct {
	MatchID         string
	Ticker          string
	BuyOrderID      string
	SellOrderID     string
	BuyPrice        float64
	SellPrice       float64
	MatchedQuantity int64
	ExecutedAt      time.Time
}
