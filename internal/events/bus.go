// Package events carries the application's UI-equivalent notifications
// (document opened, page turned, annotations changed) as explicit message
// types through a single dispatch goroutine.
package events

import "sync"

// Event is a notification delivered through the bus.
type Event interface {
	EventName() string
}

// DocumentOpened fires when a document is opened for reading.
type DocumentOpened struct {
	DocumentID uint
}

// PageChanged fires when the reader moves to a different page.
type PageChanged struct {
	DocumentID uint
	PageIndex  int
}

// AnnotationsChanged fires after any highlight or note mutation. Consumers
// must treat previously computed highlight groups as stale.
type AnnotationsChanged struct {
	DocumentID uint
}

func (DocumentOpened) EventName() string     { return "document_opened" }
func (PageChanged) EventName() string        { return "page_changed" }
func (AnnotationsChanged) EventName() string { return "annotations_changed" }

// Handler receives every published event.
type Handler func(Event)

// Bus delivers events to subscribers in publish order from one goroutine,
// so handlers never run concurrently with each other.
type Bus struct {
	mu       sync.Mutex
	handlers []Handler
	ch       chan Event
	done     chan struct{}
	closed   bool
}

// NewBus creates a started bus with the given delivery buffer.
func NewBus(buffer int) *Bus {
	b := &Bus{
		ch:   make(chan Event, buffer),
		done: make(chan struct{}),
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events.
// Must not be called after Close.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish enqueues an event for delivery. Events published after Close are
// dropped.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.ch <- e
}

// Close stops the bus after delivering everything already published.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()
	close(b.ch)
	<-b.done
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.ch {
		b.mu.Lock()
		handlers := make([]Handler, len(b.handlers))
		copy(handlers, b.handlers)
		b.mu.Unlock()
		for _, h := range handlers {
			h(e)
		}
	}
}
