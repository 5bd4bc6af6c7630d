// Package bus is an in-process, non-blocking publish/subscribe fan-out used
// by the driver to report progress and lifecycle events without coupling
// the enumeration core to any particular observer. Subscribers and taps
// are independent, and a full channel drops the message with a log
// warning rather than blocking the publisher.
package bus

import (
	"log"
	"sync"

	"github.com/omenforge/omen/internal/types"
)

const (
	subscriberBufSize = 64
	tapBufSize        = 256
)

// Bus is the observable event bus. The enumeration driver is the only
// publisher; the progress display and the run logger are its taps.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[types.EventType][]chan types.Event
	taps        []chan types.Event
}

// New creates a new Bus.
func New() *Bus {
	return &Bus{
		subscribers: make(map[types.EventType][]chan types.Event),
	}
}

// Publish fans out evt to all subscribers of evt.Type and to every tap.
// Non-blocking: if a channel is full, the event is dropped with a warning.
func (b *Bus) Publish(evt types.Event) {
	b.mu.RLock()
	subs := b.subscribers[evt.Type]
	taps := b.taps
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			log.Printf("[BUS] WARNING: subscriber channel full for type=%s — event dropped", evt.Type)
		}
	}

	for _, tap := range taps {
		select {
		case tap <- evt:
		default:
			log.Printf("[BUS] WARNING: tap channel full — event dropped type=%s", evt.Type)
		}
	}
}

// Subscribe returns a receive-only channel that delivers events of type t.
func (b *Bus) Subscribe(t types.EventType) <-chan types.Event {
	ch := make(chan types.Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[t] = append(b.subscribers[t], ch)
	b.mu.Unlock()
	return ch
}

// NewTap registers and returns a new read-only tap channel that receives
// every published event regardless of type.
func (b *Bus) NewTap() <-chan types.Event {
	ch := make(chan types.Event, tapBufSize)
	b.mu.Lock()
	b.taps = append(b.taps, ch)
	b.mu.Unlock()
	return ch
}
