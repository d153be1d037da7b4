package market

import (
	"sync"

	"github.com/venuemint/venuemint/pkg/types"
)

// BatchMinted announces the tickets minted for a newly created event.
type BatchMinted struct {
	Event      string
	Owner      types.Address
	IDs        []types.TokenID
	Quantities []uint64
}

// TicketsSold announces a completed purchase.
type TicketsSold struct {
	Event string
	Buyer types.Address
	IDs   []types.TokenID
	Total uint64
}

// Notification is either a BatchMinted or a TicketsSold.
type Notification any

// notifier fans notifications out to subscribers. Delivery is best-effort:
// a subscriber whose buffer is full misses the notification rather than
// blocking the engine.
type notifier struct {
	mu   sync.Mutex
	subs []chan Notification
}

// Subscribe registers a new subscriber with the given buffer size.
func (n *notifier) Subscribe(buffer int) <-chan Notification {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Notification, buffer)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}

func (n *notifier) publish(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- note:
		default:
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		close(ch)
	}
	n.subs = nil
}
