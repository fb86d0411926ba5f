package feed

import (
	"context"
	"sync"
)

// subscriberBuffer is how many undelivered Events a single subscriber may
// accumulate before the broker starts dropping events for it.
const subscriberBuffer = 64

// A MemoryBroker delivers Events to subscribers within a single process.
//
// It backs single-node deployments and tests; multi-node deployments
// should use RedisBroker so every operator console sees every change.
type MemoryBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewMemoryBroker constructs an empty MemoryBroker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[int]chan Event)}
}

// Publish delivers ev to every current subscriber in subscription order.
//
// A subscriber that has stopped draining its channel has events dropped
// rather than blocking every other subscriber; the periodic refresh is the
// backstop for such a session.
func (b *MemoryBroker) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}

	return nil
}

// Subscribe registers a new subscriber. The returned Unsubscribe closes the
// channel and removes the registration; it is safe to call more than once.
func (b *MemoryBroker) Subscribe(_ context.Context) (<-chan Event, Unsubscribe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}

	return ch, unsub, nil
}
