// Package broadcast provides gateway.Broadcaster implementations that do not
// depend on an external transport: an in-process fan-out hub for tests and
// single-process deployments, and a multiplexer that fans one event out to
// several broadcasters.
package broadcast

import (
	"context"
	"sync"

	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/gateway"
)

type (
	// Local is an in-process fan-out broadcaster. Observers subscribe per
	// channel and receive events on buffered Go channels. Delivery is
	// fire-and-forget: when an observer's buffer is full the event is
	// dropped for that observer rather than blocking the dispatcher.
	Local struct {
		mu     sync.RWMutex
		buffer int
		subs   map[int64]map[*Subscription]struct{}
	}

	// Subscription is one observer's registration with a Local broadcaster.
	Subscription struct {
		owner     *Local
		channelID int64
		events    chan gateway.Event
		closeOnce sync.Once
	}

	// Multi fans each event out to every wrapped broadcaster in order.
	Multi struct {
		broadcasters []gateway.Broadcaster
	}
)

// DefaultBuffer is the per-subscription event buffer used when no size is
// given.
const DefaultBuffer = 64

// NewLocal constructs a Local broadcaster. buffer is the per-subscription
// channel capacity; values below one fall back to DefaultBuffer.
func NewLocal(buffer int) *Local {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	return &Local{
		buffer: buffer,
		subs:   make(map[int64]map[*Subscription]struct{}),
	}
}

// Subscribe registers an observer for the given channel. The observer reads
// events from Events and must call Close when done.
func (l *Local) Subscribe(channelID int64) *Subscription {
	sub := &Subscription{
		owner:     l,
		channelID: channelID,
		events:    make(chan gateway.Event, l.buffer),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.subs[channelID]
	if !ok {
		set = make(map[*Subscription]struct{})
		l.subs[channelID] = set
	}
	set[sub] = struct{}{}
	return sub
}

// SubscriberCount returns the number of observers registered for channelID.
func (l *Local) SubscriberCount(channelID int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs[channelID])
}

// Broadcast implements gateway.Broadcaster. Zero subscribers on the event's
// channel is a no-op.
func (l *Local) Broadcast(ctx context.Context, event gateway.Event) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for sub := range l.subs[event.ChannelID()] {
		select {
		case sub.events <- event:
		default:
			log.Debug(ctx, log.KV{K: "msg", V: "dropping event for slow subscriber"},
				log.KV{K: "event", V: string(event.Type())},
				log.KV{K: "channel_id", V: event.ChannelID()})
		}
	}
}

// Events returns the subscription's event channel. The channel is closed by
// Close.
func (s *Subscription) Events() <-chan gateway.Event { return s.events }

// Close unregisters the subscription and closes its event channel. Idempotent.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.owner.mu.Lock()
		if set, ok := s.owner.subs[s.channelID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(s.owner.subs, s.channelID)
			}
		}
		s.owner.mu.Unlock()
		close(s.events)
	})
}

// NewMulti constructs a broadcaster that delivers each event to every given
// broadcaster in order. Nil entries are skipped.
func NewMulti(broadcasters ...gateway.Broadcaster) *Multi {
	kept := make([]gateway.Broadcaster, 0, len(broadcasters))
	for _, b := range broadcasters {
		if b != nil {
			kept = append(kept, b)
		}
	}
	return &Multi{broadcasters: kept}
}

// Broadcast implements gateway.Broadcaster.
func (m *Multi) Broadcast(ctx context.Context, event gateway.Event) {
	for _, b := range m.broadcasters {
		b.Broadcast(ctx, event)
	}
}
