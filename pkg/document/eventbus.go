package document

import (
	"sync"
)

// EventBus fans registry events out to UI observers.
// Delivery is best effort: a subscriber whose buffer is full misses the event.
type EventBus struct {
	mu        sync.RWMutex
	listeners []chan Event
	closed    bool
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make([]chan Event, 0),
	}
}

// Subscribe returns a channel receiving every published event.
// A subscription made after Close gets an already closed channel.
func (bus *EventBus) Subscribe(bufferSize int) <-chan Event {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, bufferSize)
	bus.listeners = append(bus.listeners, ch)
	return ch
}

// Unsubscribe closes and forgets a channel returned by Subscribe
func (bus *EventBus) Unsubscribe(sub <-chan Event) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for i, listener := range bus.listeners {
		if listener == sub {
			close(listener)
			bus.listeners = append(bus.listeners[:i:i], bus.listeners[i+1:]...)
			return
		}
	}
}

// Publish delivers event to all subscribers without blocking
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	if bus.closed {
		return
	}

	for _, listener := range bus.listeners {
		select {
		case listener <- event:
		default:
		}
	}
}

// Close closes the bus and every subscriber channel
func (bus *EventBus) Close() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return
	}

	bus.closed = true
	for _, listener := range bus.listeners {
		close(listener)
	}
	bus.listeners = nil
}

// ListenerCount returns the number of active listeners
func (bus *EventBus) ListenerCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.listeners)
}
