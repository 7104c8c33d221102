// Package ws exposes gateway events to network-connected observers over
// websockets. A Hub upgrades HTTP requests, tracks subscribers per channel,
// and fans broadcast events out as JSON envelopes. Connection lifecycle is
// owned here; the dispatcher only sees the gateway.Broadcaster interface.
package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/gateway"
)

type (
	// Hub implements gateway.Broadcaster over websocket connections. Each
	// subscriber declares the channel it observes via the `channel` query
	// parameter when connecting. Subscribers that cannot keep up are
	// disconnected rather than allowed to block the dispatcher.
	Hub struct {
		upgrader websocket.Upgrader
		buffer   int

		mu   sync.RWMutex
		subs map[int64]map[*subscriber]struct{}
	}

	// subscriber is one connected observer. The mutex guards the closed
	// flag so a concurrent Broadcast never sends on a closed channel.
	subscriber struct {
		id        string
		channelID int64
		conn      *websocket.Conn
		send      chan []byte
		mu        sync.Mutex
		closed    bool
	}

	// envelope is the wire form of a gateway event.
	envelope struct {
		Type      string    `json:"type"`
		ChannelID int64     `json:"channel_id"`
		SessionID int64     `json:"session_id,omitempty"`
		Timestamp time.Time `json:"timestamp"`
		Payload   any       `json:"payload,omitempty"`
	}
)

const (
	// writeWait bounds a single write to a subscriber connection.
	writeWait = 10 * time.Second

	// defaultBuffer is the per-subscriber outbound queue size.
	defaultBuffer = 64
)

// NewHub constructs a Hub. buffer is the per-subscriber outbound queue size;
// values below one fall back to the default.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = defaultBuffer
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The hub serves same-origin debug UIs and local tooling.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		buffer: buffer,
		subs:   make(map[int64]map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request to a websocket subscription. The observed
// channel is taken from the `channel` query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channelID, err := strconv.ParseInt(r.URL.Query().Get("channel"), 10, 64)
	if err != nil || channelID == 0 {
		http.Error(w, "missing or invalid channel parameter", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		log.Error(r.Context(), err, log.KV{K: "msg", V: "websocket upgrade failed"})
		return
	}
	sub := &subscriber{
		id:        uuid.NewString(),
		channelID: channelID,
		conn:      conn,
		send:      make(chan []byte, h.buffer),
	}
	h.register(sub)
	log.Debug(r.Context(), log.KV{K: "msg", V: "websocket subscriber connected"},
		log.KV{K: "subscriber", V: sub.id},
		log.KV{K: "channel_id", V: channelID})

	go h.writePump(sub)
	go h.readPump(r.Context(), sub)
}

// Broadcast implements gateway.Broadcaster. Zero subscribers on the event's
// channel is a no-op.
func (h *Hub) Broadcast(ctx context.Context, event gateway.Event) {
	env := envelope{
		Type:      string(event.Type()),
		ChannelID: event.ChannelID(),
		SessionID: event.SessionID(),
		Timestamp: time.Now().UTC(),
		Payload:   event.Payload(),
	}
	raw, err := json.Marshal(env)
	if err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "marshal gateway event"},
			log.KV{K: "event", V: string(event.Type())})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[event.ChannelID()] {
		if !sub.trySend(raw) {
			// Slow subscriber: drop the connection, not the dispatcher.
			log.Debug(ctx, log.KV{K: "msg", V: "disconnecting slow websocket subscriber"},
				log.KV{K: "subscriber", V: sub.id})
			sub.close()
		}
	}
}

// SubscriberCount returns the number of connected observers for channelID.
func (h *Hub) SubscriberCount(channelID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[channelID])
}

// Shutdown disconnects every subscriber. The hub remains usable afterwards;
// new connections are accepted until the HTTP server stops routing to it.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	all := make([]*subscriber, 0)
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()
	for _, sub := range all {
		sub.close()
	}
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[sub.channelID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[sub.channelID] = set
	}
	set[sub] = struct{}{}
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.channelID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.channelID)
		}
	}
}

// writePump drains the subscriber's outbound queue onto the connection.
func (h *Hub) writePump(sub *subscriber) {
	defer func() {
		h.unregister(sub)
		_ = sub.conn.Close()
	}()
	for raw := range sub.send {
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			return
		}
	}
}

// readPump consumes (and discards) inbound frames so pings and close frames
// are processed, and tears the subscription down when the peer goes away.
func (h *Hub) readPump(ctx context.Context, sub *subscriber) {
	defer sub.close()
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			log.Debug(ctx, log.KV{K: "msg", V: "websocket subscriber disconnected"},
				log.KV{K: "subscriber", V: sub.id})
			return
		}
	}
}

// trySend enqueues raw for delivery. It reports false when the subscriber is
// closed or its queue is full.
func (s *subscriber) trySend(raw []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- raw:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}
