package clock

import (
	"context"
	"sync"
	"time"
)

// DisplayInterval is the refresh period of live duration displays.
const DisplayInterval = time.Second

// Ticker fans a periodic tick out to any number of subscribers.
// Delivery never blocks: a subscriber that has not consumed the previous tick
// misses the next one.
type Ticker struct {
	interval time.Duration
	clock    Clock

	mu     sync.Mutex
	subs   map[int]chan time.Time
	nextID int
}

// NewTicker creates a ticker firing every interval, stamped with c.
func NewTicker(c Clock, interval time.Duration) *Ticker {
	if c == nil {
		c = Real{}
	}
	if interval <= 0 {
		interval = DisplayInterval
	}
	return &Ticker{
		interval: interval,
		clock:    c,
		subs:     make(map[int]chan time.Time),
	}
}

// Subscribe registers a listener. The returned cancel function unregisters it
// and closes the channel; it is safe to call more than once.
func (t *Ticker) Subscribe() (<-chan time.Time, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan time.Time, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if c, ok := t.subs[id]; ok {
				delete(t.subs, id)
				close(c)
			}
		})
	}
}

// Subscribers returns the number of registered listeners.
func (t *Ticker) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Publish delivers now to every subscriber without blocking.
func (t *Ticker) Publish(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- now:
		default:
		}
	}
}

// Run publishes ticks until ctx is done, then closes every subscription.
func (t *Ticker) Run(ctx context.Context) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	defer t.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.Publish(t.clock.Now())
		}
	}
}

func (t *Ticker) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}
