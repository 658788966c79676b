package pricefeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subscription is the handle returned by Subscribe. Holders pass it back to
// Unsubscribe exactly once (extra calls are no-ops).
type Subscription struct {
	id      uuid.UUID
	onPrice func(price float64)
	onError func(err error)
}

// Broadcaster polls a Source on a fixed interval, caches the last good price
// and fans every change out to the registered subscribers. A failed poll is
// reported to subscribers without touching the cache, and a poll returning
// the cached value again is suppressed entirely.
//
// All polling happens on a single goroutine, so fetches never overlap even
// when the upstream is slower than the interval.
type Broadcaster struct {
	source   Source
	interval time.Duration

	mu         sync.Mutex
	subs       map[uuid.UUID]*Subscription
	current    float64
	observedAt time.Time
	hasPrice   bool
	running    bool
	stopCh     chan struct{}
}

const pollTimeout = 15 * time.Second

func NewBroadcaster(source Source, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Broadcaster{
		source:   source,
		interval: interval,
		subs:     make(map[uuid.UUID]*Subscription),
	}
}

// Start transitions the broadcaster to polling: one immediate poll, then one
// per interval. Calling Start while already polling is a no-op.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.stopCh = make(chan struct{})
	stopCh := b.stopCh
	b.mu.Unlock()

	go func() {
		b.pollWithTimeout()

		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				b.pollWithTimeout()
			}
		}
	}()

	fmt.Printf("[FEED] Price polling started (every %s)\n", b.interval)
}

// Stop cancels the poll timer. Subscribers stay registered so a later Start
// resumes delivering to them. Calling Stop while idle is a no-op.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.running {
		return
	}
	close(b.stopCh)
	b.running = false
	fmt.Println("[FEED] Price polling stopped")
}

func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Subscribe registers a callback pair. The cached price is not replayed; the
// subscriber hears nothing until the next poll that changes or fails.
func (b *Broadcaster) Subscribe(onPrice func(float64), onError func(error)) *Subscription {
	sub := &Subscription{id: uuid.New(), onPrice: onPrice, onError: onError}
	b.mu.Lock()
	b.subs[sub.id] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscription. Safe to call repeatedly and with nil.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	delete(b.subs, sub.id)
	b.mu.Unlock()
}

// Current returns the cached price, and false when no poll has succeeded yet.
func (b *Broadcaster) Current() (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.hasPrice
}

// LastSample additionally reports when the cached price was observed.
func (b *Broadcaster) LastSample() (price float64, observedAt time.Time, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.observedAt, b.hasPrice
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) pollWithTimeout() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	b.PollNow(ctx)
}

// PollNow runs one poll cycle outside the timer: fetch, refresh the cache on
// change, notify subscribers. Start uses it for the initial poll.
func (b *Broadcaster) PollNow(ctx context.Context) {
	price, err := b.source.Fetch(ctx)
	if err != nil {
		fmt.Printf("[FEED] %s poll failed: %v\n", time.Now().Format("15:04:05"), err)
		for _, sub := range b.snapshot() {
			if sub.onError != nil {
				deliver(func() { sub.onError(err) })
			}
		}
		return
	}

	b.mu.Lock()
	if b.hasPrice && b.current == price {
		b.mu.Unlock()
		return
	}
	b.current = price
	b.observedAt = time.Now()
	b.hasPrice = true
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	fmt.Printf("[FEED] %s gold price updated: $%.2f/oz\n", time.Now().Format("15:04:05"), price)
	for _, sub := range subs {
		if sub.onPrice != nil {
			deliver(func() { sub.onPrice(price) })
		}
	}
}

func (b *Broadcaster) snapshot() []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]*Subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	return subs
}

// deliver isolates one callback invocation so a panicking subscriber cannot
// take down the poll loop or starve the remaining subscribers.
func deliver(f func()) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("[FEED] subscriber callback panicked: %v\n", r)
		}
	}()
	f()
}
