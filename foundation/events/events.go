// Package events fans ledger events out to any number of subscribers.
package events

import (
	"fmt"
	"sync"
)

// subscriberBuffer is the number of events held for a subscriber that is
// slow to receive. Events are dropped for that subscriber once it is full.
const subscriberBuffer = 100

// Events maintains a channel per subscriber id.
type Events struct {
	mu   sync.RWMutex
	subs map[string]chan string
}

// New constructs an Events value with no subscribers.
func New() *Events {
	return &Events{
		subs: make(map[string]chan string),
	}
}

// Subscribe returns the channel for the id, creating it when needed.
func (evt *Events) Subscribe(id string) <-chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subs[id]; exists {
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	evt.subs[id] = ch

	return ch
}

// Unsubscribe closes and removes the channel for the id.
func (evt *Events) Unsubscribe(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subs[id]
	if !exists {
		return fmt.Errorf("subscriber %q does not exist", id)
	}

	delete(evt.subs, id)
	close(ch)

	return nil
}

// Send delivers the event to every subscriber without blocking.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Count returns the number of subscribers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.subs)
}

// Shutdown closes and removes every subscriber channel.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subs {
		delete(evt.subs, id)
		close(ch)
	}
}
