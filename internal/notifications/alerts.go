package notifications

import (
	"fmt"
	"sync"
)

// FeedAlerts watches the price feed through a broadcaster subscription and
// raises one webhook alert per outage: after `threshold` consecutive failed
// polls it alerts, then stays quiet until the feed recovers.
type FeedAlerts struct {
	sender    *Sender
	threshold int

	mu      sync.Mutex
	streak  int
	alerted bool
}

func NewFeedAlerts(sender *Sender, threshold int) *FeedAlerts {
	if threshold <= 0 {
		threshold = 5
	}
	return &FeedAlerts{sender: sender, threshold: threshold}
}

// PriceOK is the broadcaster's onPrice callback.
func (a *FeedAlerts) PriceOK(price float64) {
	a.mu.Lock()
	recovered := a.alerted
	a.streak = 0
	a.alerted = false
	a.mu.Unlock()

	if recovered {
		a.sender.Send(fmt.Sprintf("Price feed recovered: $%.2f/oz", price))
	}
}

// FeedError is the broadcaster's onError callback.
func (a *FeedAlerts) FeedError(err error) {
	a.mu.Lock()
	a.streak++
	fire := a.streak >= a.threshold && !a.alerted
	if fire {
		a.alerted = true
	}
	streak := a.streak
	a.mu.Unlock()

	if fire {
		a.sender.Send(fmt.Sprintf("Price feed down: %d consecutive failures, last error: %v", streak, err))
	}
}
