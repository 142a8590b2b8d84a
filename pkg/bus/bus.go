// Package bus implements the synchronous publish/subscribe hub that
// decouples turn orchestration from the content providers. Delivery is
// in-order and synchronous: every handler for an event type runs (or is
// caught) before Publish returns.
package bus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cineforge/muse/pkg/logger"
)

const DefaultHistorySize = 100

// Event is one published occurrence on the bus.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source,omitempty"`
}

// Handler receives an event. A returned error is logged and swallowed; it
// never stops delivery to the remaining subscribers.
type Handler func(Event) error

type subscriber struct {
	name string
	fn   Handler
}

// EventBus fans events out to subscribers in registration order and keeps a
// bounded, newest-first queryable history in a fixed-capacity ring.
type EventBus struct {
	mu          sync.Mutex
	subscribers map[string][]subscriber
	entries     []Event // ring buffer, capacity fixed at construction
	next        int     // next write position
	count       int     // number of valid entries, <= cap(entries)
}

func New() *EventBus {
	return NewWithCapacity(DefaultHistorySize)
}

func NewWithCapacity(capacity int) *EventBus {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &EventBus{
		subscribers: make(map[string][]subscriber),
		entries:     make([]Event, capacity),
	}
}

// Subscribe registers a named handler for an event type. Subscribing the
// same (type, name) pair twice replaces nothing and adds nothing: the call
// is idempotent.
func (b *EventBus) Subscribe(eventType, name string, fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.subscribers[eventType] {
		if s.name == name {
			return
		}
	}
	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber{name: name, fn: fn})
}

// Unsubscribe removes a named handler. Removing an absent handler is a no-op.
func (b *EventBus) Unsubscribe(eventType, name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.name == name {
			b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish records the event in history and synchronously invokes every
// subscriber for its type in registration order. Handlers may publish
// further events from within their callback: the lock is not held during
// delivery, so re-entrant publishes cannot deadlock.
func (b *EventBus) Publish(eventType string, payload any, source string) string {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		Source:    source,
	}

	b.mu.Lock()
	b.entries[b.next] = event
	b.next = (b.next + 1) % cap(b.entries)
	if b.count < cap(b.entries) {
		b.count++
	}
	subs := make([]subscriber, len(b.subscribers[eventType]))
	copy(subs, b.subscribers[eventType])
	b.mu.Unlock()

	for _, s := range subs {
		b.deliver(s, event)
	}
	return event.ID
}

func (b *EventBus) deliver(s subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCF("bus", "Handler panicked",
				map[string]any{"handler": s.name, "event_type": event.Type, "panic": fmt.Sprintf("%v", r)})
		}
	}()

	if err := s.fn(event); err != nil {
		logger.ErrorCF("bus", "Handler failed",
			map[string]any{"handler": s.name, "event_type": event.Type, "error": err.Error()})
	}
}

// History returns up to limit events, newest first. An empty eventType
// matches everything.
func (b *EventBus) History(eventType string, limit int) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}
	capacity := cap(b.entries)
	out := make([]Event, 0, limit)
	for i := 1; i <= b.count && len(out) < limit; i++ {
		e := b.entries[((b.next-i)%capacity+capacity)%capacity]
		if eventType != "" && e.Type != eventType {
			continue
		}
		out = append(out, e)
	}
	return out
}

// ClearHistory drops all recorded events. Subscriptions are unaffected.
func (b *EventBus) ClearHistory() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next = 0
	b.count = 0
}

// Stats summarizes bus activity for health reporting.
type Stats struct {
	RecordedEvents  int            `json:"recorded_events"`
	SubscriberCount map[string]int `json:"subscriber_count"`
}

func (b *EventBus) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()

	counts := make(map[string]int, len(b.subscribers))
	for t, subs := range b.subscribers {
		counts[t] = len(subs)
	}
	return Stats{RecordedEvents: b.count, SubscriberCount: counts}
}
