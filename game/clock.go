package game

import (
	"context"
	"time"
)

// Clock paces the episode loop. Wait blocks until the next tick is due.
type Clock interface {
	Wait(ctx context.Context) error
}

// FreeRunning never blocks; ticks run as fast as the CPU allows.
type FreeRunning struct{}

// Wait returns immediately unless ctx is done.
func (FreeRunning) Wait(ctx context.Context) error {
	return ctx.Err()
}

// FixedRate releases one tick per interval at a steady ticks-per-second rate.
type FixedRate struct {
	ticker *time.Ticker
}

// NewFixedRate creates a clock targeting tps ticks per second.
func NewFixedRate(tps int) *FixedRate {
	if tps <= 0 {
		tps = 40
	}
	return &FixedRate{ticker: time.NewTicker(time.Second / time.Duration(tps))}
}

// Wait blocks until the next tick or until ctx is done.
func (c *FixedRate) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ticker.C:
		return nil
	}
}

// Stop releases the underlying ticker.
func (c *FixedRate) Stop() {
	c.ticker.Stop()
}
