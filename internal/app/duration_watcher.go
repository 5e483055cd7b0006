package app

import (
	"context"
	"sync"
	"time"

	"github.com/example/shopfloor/internal/clock"
	"github.com/example/shopfloor/internal/core/workorder"
	"github.com/example/shopfloor/internal/ports/primary"
)

// DurationUpdate is one refresh of the live duration displays.
// Work orders that are not cached are left out.
type DurationUpdate struct {
	At       time.Time
	Displays map[string]workorder.Display
}

// DurationWatcher turns display ticks into duration updates. It reads the
// execution service's cache only and never talks to the gateway.
type DurationWatcher struct {
	exec   primary.ExecutionService
	ticker *clock.Ticker
}

// NewDurationWatcher creates a watcher fed by ticker.
func NewDurationWatcher(exec primary.ExecutionService, ticker *clock.Ticker) *DurationWatcher {
	return &DurationWatcher{exec: exec, ticker: ticker}
}

// Snapshot computes the displays of the given work orders at now.
func (w *DurationWatcher) Snapshot(now time.Time, workOrderIDs ...string) DurationUpdate {
	update := DurationUpdate{At: now, Displays: make(map[string]workorder.Display, len(workOrderIDs))}
	for _, id := range workOrderIDs {
		if d, err := w.exec.Elapsed(id, now); err == nil {
			update.Displays[id] = d
		}
	}
	return update
}

// Watch delivers an update per tick until ctx is done, the ticker stops, or
// the returned stop function is called. The channel is closed on exit. A slow
// reader misses ticks rather than blocking the ticker.
func (w *DurationWatcher) Watch(ctx context.Context, workOrderIDs ...string) (<-chan DurationUpdate, func()) {
	ticks, unsubscribe := w.ticker.Subscribe()
	out := make(chan DurationUpdate, 1)
	done := make(chan struct{})

	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case now, ok := <-ticks:
				if !ok {
					return
				}
				select {
				case out <- w.Snapshot(now, workOrderIDs...):
				default:
				}
			}
		}
	}()

	var once sync.Once
	return out, func() { once.Do(func() { close(done) }) }
}
