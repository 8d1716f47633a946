// Package metaservice adapts an out-of-process meta/schema service into
// a push-based feed that pkg/catalog subscribes to: buffered channel
// fan-out of schema-version pushes to subscribers.
package metaservice

import (
	"sync"

	"github.com/cuemby/graphd/pkg/types"
)

// SchemaKind distinguishes the three kinds of push: tag schema, edge
// schema, and index definition.
type SchemaKind uint8

const (
	KindTag SchemaKind = iota
	KindEdge
	KindIndex
)

// Push is one schema-catalog update: a TagSchema, an EdgeSchema, or an
// IndexDef registration, never more than one per push.
type Push struct {
	Kind  SchemaKind
	Tag   *types.TagSchema
	Edge  *types.EdgeSchema
	Index *types.IndexDef
}

// Subscriber is a channel of catalog pushes.
type Subscriber chan Push

// Broker fans schema pushes out to subscribers: one buffered intake
// channel, per-subscriber buffered channels; a push that finds a
// subscriber's buffer full is dropped for that subscriber rather than
// blocking the feed, and the subscriber stays subscribed.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[Subscriber]bool
	pushCh      chan Push
	stopCh      chan struct{}
}

// NewBroker builds a Broker with the given intake buffer depth.
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = 100
	}
	return &Broker{
		subscribers: make(map[Subscriber]bool),
		pushCh:      make(chan Push, buffer),
		stopCh:      make(chan struct{}),
	}
}

// Start begins the broker's distribution loop.
func (b *Broker) Start() {
	go b.run()
}

// Stop halts the distribution loop and closes all subscriber channels.
func (b *Broker) Stop() {
	close(b.stopCh)
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		delete(b.subscribers, sub)
		close(sub)
	}
}

// Subscribe returns a new channel that receives every push after this call.
func (b *Broker) Subscribe() Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	sub := make(Subscriber, 32)
	b.subscribers[sub] = true
	return sub
}

// Unsubscribe removes and closes a subscription.
func (b *Broker) Unsubscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subscribers[sub]; !ok {
		return
	}
	delete(b.subscribers, sub)
	close(sub)
}

// PublishTag pushes a new tag schema version to all subscribers.
func (b *Broker) PublishTag(s *types.TagSchema) {
	b.publish(Push{Kind: KindTag, Tag: s})
}

// PublishEdge pushes a new edge schema version to all subscribers.
func (b *Broker) PublishEdge(s *types.EdgeSchema) {
	b.publish(Push{Kind: KindEdge, Edge: s})
}

// PublishIndex registers a secondary index definition with all
// subscribers.
func (b *Broker) PublishIndex(d *types.IndexDef) {
	b.publish(Push{Kind: KindIndex, Index: d})
}

func (b *Broker) publish(p Push) {
	select {
	case b.pushCh <- p:
	case <-b.stopCh:
	}
}

func (b *Broker) run() {
	for {
		select {
		case p := <-b.pushCh:
			b.broadcast(p)
		case <-b.stopCh:
			return
		}
	}
}

func (b *Broker) broadcast(p Push) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subscribers {
		select {
		case sub <- p:
		default:
			// subscriber buffer full; this push is lost for this
			// subscriber and is not redelivered.
		}
	}
}

// SubscriberCount reports the number of active subscriptions.
func (b *Broker) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
