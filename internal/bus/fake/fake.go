// Package fake provides an in-memory Bus for tests.
package fake

import (
	"sync"

	"github.com/Dhamma-Sobhana/gong/internal/bus"
)

type Published struct {
	Topic   string
	Payload any
}

// Bus records published messages and lets tests inject inbound messages.
type Bus struct {
	lock      sync.Mutex
	connected bool
	handlers  []bus.Handler
	published []Published
}

var _ bus.Bus = &Bus{}

func New() *Bus {
	return &Bus{connected: true}
}

func (b *Bus) Publish(topic string, payload any) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.published = append(b.published, Published{Topic: topic, Payload: payload})
	return nil
}

func (b *Bus) Subscribe(handler bus.Handler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.handlers = append(b.handlers, handler)
}

func (b *Bus) Connected() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.connected
}

func (b *Bus) SetConnected(connected bool) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.connected = connected
}

// Receive delivers an inbound message to all registered handlers, as the MQTT
// client would on message arrival.
func (b *Bus) Receive(msg bus.Message) {
	b.lock.Lock()
	handlers := make([]bus.Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.lock.Unlock()
	for _, handler := range handlers {
		handler(msg)
	}
}

// Published returns all messages published so far.
func (b *Bus) Published() []Published {
	b.lock.Lock()
	defer b.lock.Unlock()
	result := make([]Published, len(b.published))
	copy(result, b.published)
	return result
}

// PublishedTo returns the published messages for one topic.
func (b *Bus) PublishedTo(topic string) []Published {
	var result []Published
	for _, p := range b.Published() {
		if p.Topic == topic {
			result = append(result, p)
		}
	}
	return result
}

// Reset clears the record of published messages.
func (b *Bus) Reset() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.published = nil
}
