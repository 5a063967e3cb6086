// Path: internal/events/broker.go
package events

import (
	"slices"
	"sync"
)

// Topics published by the viewer.
const (
	// TopicViewRendered carries a domain.View after every state mutation.
	TopicViewRendered = "view:rendered"
	// TopicPageLoaded carries the domain.PaginationMeta of a freshly fetched page.
	TopicPageLoaded = "catalog:page_loaded"
)

// Event represents a message passed through the broker.
type Event struct {
	Topic string
	Data  any
}

// Broker implements a simple in-memory pub/sub system.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// NewBroker creates a new event broker.
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Event),
	}
}

// Subscribe creates a new subscription to a topic.
// It returns a read-only channel where events for that topic will be sent.
func (b *Broker) Subscribe(topic string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 1) // Buffered channel to prevent blocking publishers
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broker) Unsubscribe(topic string, sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	i := slices.IndexFunc(subs, func(ch chan Event) bool { return (<-chan Event)(ch) == sub })
	if i < 0 {
		return
	}
	close(subs[i])
	b.subscribers[topic] = slices.Delete(subs, i, i+1)
}

// Publish sends an event to all subscribers of a topic.
// A subscriber that is not ready misses the event.
func (b *Broker) Publish(topic string, data any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	event := Event{Topic: topic, Data: data}
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- event:
		default:
		}
	}
}
