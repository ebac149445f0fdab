package events

import (
	"sync"
	"time"
)

// Handler receives events from the bus. Handlers run on the bus's dispatch
// goroutine, one event at a time, in emit order.
type Handler func(Event)

// Bus provides event distribution across components
type Bus struct {
	Capacity int
	events   chan Event

	hmu      sync.RWMutex
	handlers []Handler

	// mu guards closed; Emit holds it shared while sending
	mu     sync.RWMutex
	closed bool

	done chan struct{}
	now  func() time.Time
}

// NewBus creates a new event bus with the specified capacity
func NewBus(capacity int) *Bus {
	b := &Bus{
		Capacity: capacity,
		events:   make(chan Event, capacity),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.hmu.Lock()
	defer b.hmu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps the event and queues it for delivery. It blocks while the
// buffer is full. Events emitted after Close are dropped.
func (b *Bus) Emit(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	if e.Time.IsZero() {
		e.Time = b.now()
	}
	b.events <- e
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.hmu.RLock()
		handlers := b.handlers
		b.hmu.RUnlock()
		for _, h := range handlers {
			h(e)
		}
	}
}

// Close shuts down the event bus, delivering queued events first
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.events)
	b.mu.Unlock()

	<-b.done
	return nil
}
