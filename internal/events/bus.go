package events

import (
	"sync"
	"time"
)

// Handler processes a single event. Handlers run synchronously on the
// emitting goroutine and must not block.
type Handler func(Event)

// Bus fans events out to subscribed handlers
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	closed   bool
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps the event with the current time and dispatches it to every
// subscribed handler. Emits after Close are dropped.
func (b *Bus) Emit(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	for _, h := range b.handlers {
		h(e)
	}
}

// Close shuts down the event bus; further emits are silently dropped
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}
