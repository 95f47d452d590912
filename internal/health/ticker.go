// Package health reports periodic readiness snapshots to the fleet manager.
package health

import (
	"context"
	"log"
	"time"

	"github.com/hypermage/shardcore/internal/fleet"
)

// DefaultInterval is how often a snapshot is reported when no interval is
// configured.
const DefaultInterval = 30 * time.Second

// Ticker runs a pure snapshot function on a fixed interval and hands the
// result to the fleet manager. Nothing depends on a report completing; a
// failed delivery is logged and the next tick proceeds as usual.
type Ticker struct {
	interval time.Duration
	snapshot func() fleet.Snapshot
	manager  fleet.Manager
}

// NewTicker creates a health ticker. A non-positive interval falls back to
// the default.
func NewTicker(interval time.Duration, snapshot func() fleet.Snapshot, manager fleet.Manager) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval, snapshot: snapshot, manager: manager}
}

// Run reports snapshots until the context is cancelled.
func (t *Ticker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := t.snapshot()
			if !t.manager.ReportHealth(snap) {
				log.Printf("health: report failed for shard %s", snap.ShardID)
			}
		}
	}
}
