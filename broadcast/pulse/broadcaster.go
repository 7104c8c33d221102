package pulse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/gateway"
)

type (
	// Options configures the Pulse broadcaster.
	Options struct {
		// Client is the Pulse client used to publish events. Required.
		Client Client
		// StreamID derives the target Pulse stream from an event. Defaults
		// to `channel/<ChannelID>`.
		StreamID func(gateway.Event) (string, error)
		// MarshalEnvelope overrides envelope serialization (primarily for
		// tests).
		MarshalEnvelope func(Envelope) ([]byte, error)
	}

	// Broadcaster publishes gateway events into Pulse streams, one stream
	// per channel. Delivery is fire-and-forget per the gateway.Broadcaster
	// contract: publish failures are logged and absorbed, never surfaced to
	// the dispatcher. Thread-safe for concurrent Broadcast calls.
	Broadcaster struct {
		client          Client
		streamID        func(gateway.Event) (string, error)
		marshalEnvelope func(Envelope) ([]byte, error)
	}

	// Envelope wraps gateway events for transmission over Pulse streams.
	Envelope struct {
		// Type identifies the event kind (e.g., "task_queue_update").
		Type string `json:"type"`
		// ChannelID is the channel the event is scoped to.
		ChannelID int64 `json:"channel_id"`
		// SessionID is the producing session, zero for channel-only events.
		SessionID int64 `json:"session_id,omitempty"`
		// Timestamp records when the event was published (UTC).
		Timestamp time.Time `json:"timestamp"`
		// Payload contains the event-specific data, if any.
		Payload any `json:"payload,omitempty"`
	}
)

// New constructs a Pulse-backed broadcaster. The Client field in opts is
// required; StreamID and MarshalEnvelope default to the built-ins.
func New(opts Options) (*Broadcaster, error) {
	if opts.Client == nil {
		return nil, errors.New("pulse client is required")
	}
	b := &Broadcaster{
		client:          opts.Client,
		streamID:        defaultStreamID,
		marshalEnvelope: defaultMarshal,
	}
	if opts.StreamID != nil {
		b.streamID = opts.StreamID
	}
	if opts.MarshalEnvelope != nil {
		b.marshalEnvelope = opts.MarshalEnvelope
	}
	return b, nil
}

// Broadcast implements gateway.Broadcaster. It derives the stream ID, wraps
// the event in an envelope, and publishes it. Failures are logged, not
// returned: retry belongs to the transport, not this layer.
func (b *Broadcaster) Broadcast(ctx context.Context, event gateway.Event) {
	if err := b.publish(ctx, event); err != nil {
		log.Error(ctx, err,
			log.KV{K: "msg", V: "pulse broadcast failed"},
			log.KV{K: "event", V: string(event.Type())},
			log.KV{K: "channel_id", V: event.ChannelID()})
	}
}

// Close releases resources owned by the broadcaster.
func (b *Broadcaster) Close(ctx context.Context) error {
	return b.client.Close(ctx)
}

func (b *Broadcaster) publish(ctx context.Context, event gateway.Event) error {
	streamID, err := b.streamID(event)
	if err != nil {
		return err
	}
	str, err := b.client.Stream(streamID)
	if err != nil {
		return err
	}
	env := Envelope{
		Type:      string(event.Type()),
		ChannelID: event.ChannelID(),
		SessionID: event.SessionID(),
		Timestamp: time.Now().UTC(),
		Payload:   event.Payload(),
	}
	payload, err := b.marshalEnvelope(env)
	if err != nil {
		return err
	}
	if _, err := str.Add(ctx, env.Type, payload); err != nil {
		return err
	}
	return nil
}

// defaultStreamID derives the Pulse stream name from the event's channel.
func defaultStreamID(event gateway.Event) (string, error) {
	if event.ChannelID() == 0 {
		return "", errors.New("gateway event missing channel id")
	}
	return fmt.Sprintf("channel/%d", event.ChannelID()), nil
}

// defaultMarshal serializes an envelope to JSON.
func defaultMarshal(env Envelope) ([]byte, error) {
	return json.Marshal(env)
}
