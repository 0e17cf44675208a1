// Package worker holds background maintenance workers.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is a store that can drop its expired entries.
type Sweepable interface {
	Sweep(now time.Time) int
}

// Pruner periodically sweeps expired entries out of in-memory stores.
// Redis expires keys by itself; this covers the memory fallback.
type Pruner struct {
	interval time.Duration
	stores   map[string]Sweepable
}

// NewPruner creates a pruner over the named stores.
func NewPruner(interval time.Duration, stores map[string]Sweepable) *Pruner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Pruner{interval: interval, stores: stores}
}

// Start runs the pruner loop until the context is cancelled.
func (p *Pruner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *Pruner) prune() {
	now := time.Now()
	for name, store := range p.stores {
		if removed := store.Sweep(now); removed > 0 {
			slog.Debug("Pruned expired entries", "store", name, "removed", removed)
		}
	}
}
