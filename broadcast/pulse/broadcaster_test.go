package pulse

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/agentgate/gateway"
	"github.com/halcyonlabs/agentgate/orchestrator"
)

type (
	fakeClient struct {
		stream    *fakeStream
		streamErr error
		lastName  string
	}

	fakeStream struct {
		events   []string
		payloads [][]byte
		addErr   error
	}
)

func (c *fakeClient) Stream(name string) (Stream, error) {
	c.lastName = name
	if c.streamErr != nil {
		return nil, c.streamErr
	}
	return c.stream, nil
}

func (c *fakeClient) Close(context.Context) error { return nil }

func (s *fakeStream) Add(_ context.Context, event string, payload []byte) (string, error) {
	if s.addErr != nil {
		return "", s.addErr
	}
	s.events = append(s.events, event)
	s.payloads = append(s.payloads, payload)
	return "1-0", nil
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Options{})
	require.EqualError(t, err, "pulse client is required")
}

func TestBroadcastPublishesEnvelope(t *testing.T) {
	str := &fakeStream{}
	cli := &fakeClient{stream: str}
	b, err := New(Options{Client: cli})
	require.NoError(t, err)

	cur := uint32(1)
	tasks := []orchestrator.Task{
		{ID: 1, Status: orchestrator.StatusInProgress, Description: "inspect"},
		{ID: 2, Status: orchestrator.StatusPending, Description: "report"},
	}
	b.Broadcast(context.Background(), gateway.NewTaskQueueUpdate(7, 42, tasks, &cur))

	require.Equal(t, "channel/7", cli.lastName)
	require.Equal(t, []string{"task_queue_update"}, str.events)

	var env Envelope
	require.NoError(t, json.Unmarshal(str.payloads[0], &env))
	require.Equal(t, "task_queue_update", env.Type)
	require.Equal(t, int64(7), env.ChannelID)
	require.Equal(t, int64(42), env.SessionID)
	require.False(t, env.Timestamp.IsZero())

	body, ok := env.Payload.(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(1), body["current_task_id"])
	require.Len(t, body["tasks"], 2)
}

func TestBroadcastAbsorbsPublishErrors(t *testing.T) {
	cli := &fakeClient{stream: &fakeStream{addErr: errors.New("redis down")}}
	b, err := New(Options{Client: cli})
	require.NoError(t, err)

	// Fire-and-forget: must not panic or surface the error.
	b.Broadcast(context.Background(), gateway.NewSessionComplete(3, 9))
}

func TestCustomStreamID(t *testing.T) {
	str := &fakeStream{}
	cli := &fakeClient{stream: str}
	b, err := New(Options{
		Client: cli,
		StreamID: func(e gateway.Event) (string, error) {
			return "debug/all", nil
		},
	})
	require.NoError(t, err)

	b.Broadcast(context.Background(), gateway.NewSessionComplete(3, 9))
	require.Equal(t, "debug/all", cli.lastName)
}

func TestDefaultStreamIDRequiresChannel(t *testing.T) {
	_, err := defaultStreamID(gateway.NewSessionComplete(0, 1))
	require.EqualError(t, err, "gateway event missing channel id")
}
