package engine

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically runs a full matching sweep across all known
// tickers. It stands in for external matcher threads: producers keep
// submitting orders while the sweeper drains compatible pairs one match
// per ticker per tick.
type Sweeper struct {
	interval time.Duration
	engine   *Engine
	logger   *slog.Logger
}

// NewSweeper creates a Sweeper ticking at the given interval.
func NewSweeper(interval time.Duration, engine *Engine, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		interval: interval,
		engine:   engine,
		logger:   logger,
	}
}

// Start launches a background goroutine that ticks at the configured
// interval and sweeps all tickers. It stops when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

// sweep runs one MatchAll pass and logs each match produced.
func (s *Sweeper) sweep() {
	for _, ev := range s.engine.MatchAll() {
		s.logger.Info("match",
			slog.String("ticker", ev.Ticker),
			slog.Float64("buy_price", ev.BuyPrice),
			slog.Float64("sell_price", ev.SellPrice),
			slog.Int64("quantity", ev.MatchedQuantity),
		)
	}
}
