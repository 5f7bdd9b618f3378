// Package event provides the pub/sub bus that fans translation
// lifecycle events out to the server's SSE clients and other
// listeners, built on watermill's gochannel transport.
package event

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Type identifies an event.
type Type string

const (
	TranslationStarted   Type = "translation.started"
	TranslationContent   Type = "translation.content"
	TranslationReasoning Type = "translation.reasoning"
	TranslationDone      Type = "translation.done"
	TranslationError     Type = "translation.error"
	TranslationCancelled Type = "translation.cancelled"
	HistoryAppended      Type = "history.appended"
	HistoryRemoved       Type = "history.removed"
	SettingsChanged      Type = "settings.changed"
	Notification         Type = "notification"
)

// Event is one published event.
type Event struct {
	Type Type `json:"type"`
	Data any  `json:"data"`
}

// Subscriber receives events.
type Subscriber func(event Event)

type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Bus fans events out to typed and global subscribers. Direct
// subscriber dispatch preserves Go types end to end; the watermill
// channel underneath carries the same events for middleware or a
// future distributed backend.
type Bus struct {
	mu sync.RWMutex

	pubsub *gochannel.GoChannel

	subscribers map[Type][]subscriberEntry
	global      []subscriberEntry

	nextID       uint64
	closed       bool
	closedCancel context.CancelFunc
	closedCtx    context.Context
}

// NewBus creates an event bus.
func NewBus() *Bus {
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer: 100,
				Persistent:          false,
			},
			watermill.NopLogger{},
		),
		subscribers:  make(map[Type][]subscriberEntry),
		closedCtx:    ctx,
		closedCancel: cancel,
	}
}

func (b *Bus) newID() uint64 {
	return atomic.AddUint64(&b.nextID, 1)
}

// Subscribe registers a subscriber for one event type and returns its
// unsubscribe function.
func (b *Bus) Subscribe(t Type, fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.newID()
	b.subscribers[t] = append(b.subscribers[t], subscriberEntry{id: id, fn: fn})
	return func() { b.unsubscribe(t, id) }
}

// SubscribeAll registers a subscriber for every event and returns its
// unsubscribe function.
func (b *Bus) SubscribeAll(fn Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return func() {}
	}

	id := b.newID()
	b.global = append(b.global, subscriberEntry{id: id, fn: fn})
	return func() { b.unsubscribeGlobal(id) }
}

func (b *Bus) unsubscribe(t Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[t]
	for i, entry := range subs {
		if entry.id == id {
			b.subscribers[t] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

func (b *Bus) unsubscribeGlobal(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, entry := range b.global {
		if entry.id == id {
			b.global = append(b.global[:i], b.global[i+1:]...)
			return
		}
	}
}

func (b *Bus) collect(t Type) []Subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil
	}
	subs := make([]Subscriber, 0, len(b.subscribers[t])+len(b.global))
	for _, entry := range b.subscribers[t] {
		subs = append(subs, entry.fn)
	}
	for _, entry := range b.global {
		subs = append(subs, entry.fn)
	}
	return subs
}

// Publish delivers the event asynchronously, each subscriber in its
// own goroutine. Delivery order across events is not guaranteed.
func (b *Bus) Publish(event Event) {
	b.forward(event)
	for _, sub := range b.collect(event.Type) {
		go sub(event)
	}
}

// PublishSync delivers the event in the calling goroutine, returning
// after every subscriber has run. Streaming progress events use this
// path so subscribers observe them in emission order.
func (b *Bus) PublishSync(event Event) {
	b.forward(event)
	for _, sub := range b.collect(event.Type) {
		sub(event)
	}
}

// forward mirrors the event onto the watermill channel, one topic per
// event type, for subscribers that want message semantics instead of a
// direct callback.
func (b *Bus) forward(event Event) {
	if b.closedCtx.Err() != nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	b.pubsub.Publish(string(event.Type), message.NewMessage(watermill.NewUUID(), payload))
}

// Close drops all subscribers and shuts the bus down.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.closedCancel()
	b.subscribers = make(map[Type][]subscriberEntry)
	b.global = nil
	b.mu.Unlock()

	return b.pubsub.Close()
}

// PubSub exposes the underlying watermill channel.
func (b *Bus) PubSub() *gochannel.GoChannel {
	return b.pubsub
}
