package telemetry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectorSnapshotIsStableCopy(t *testing.T) {
	c := NewCollector()
	c.Append(Span{Kind: SpanToolCall, Name: "web_search"})
	c.Append(Span{Kind: SpanLLMCall, Name: "claude"})

	snap := c.Snapshot()
	require.Len(t, snap, 2)

	c.Append(Span{Kind: SpanReward, Name: "tool_completed"})
	require.Len(t, snap, 2)
	require.Equal(t, 3, c.Len())
}

func TestCollectorConcurrentAppend(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Append(Span{Kind: SpanToolCall})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 400, c.Len())
}

func TestPopulateAttemptStats(t *testing.T) {
	spans := []Span{
		{Kind: SpanToolCall, Name: "web_search"},
		{Kind: SpanToolCall, Name: "memory_store"},
		{Kind: SpanLLMCall, Name: "claude"},
		{Kind: SpanReward, Name: "tool_completed"},
	}

	r := NewRollout()
	r.StartAttempt(time.Now())
	PopulateAttemptStats(r, spans)

	attempt := r.CurrentAttempt()
	require.NotNil(t, attempt)
	require.Equal(t, uint32(2), attempt.ToolCalls)
	require.Equal(t, uint32(1), attempt.LLMCalls)
}

func TestPopulateAttemptStatsOrderIndependent(t *testing.T) {
	forward := []Span{
		{Kind: SpanLLMCall},
		{Kind: SpanToolCall},
		{Kind: SpanReward},
		{Kind: SpanToolCall},
	}
	reversed := []Span{forward[3], forward[2], forward[1], forward[0]}

	a := NewRollout()
	a.StartAttempt(time.Now())
	PopulateAttemptStats(a, forward)

	b := NewRollout()
	b.StartAttempt(time.Now())
	PopulateAttemptStats(b, reversed)

	require.Equal(t, a.CurrentAttempt().ToolCalls, b.CurrentAttempt().ToolCalls)
	require.Equal(t, a.CurrentAttempt().LLMCalls, b.CurrentAttempt().LLMCalls)
}

func TestPopulateAttemptStatsIdempotent(t *testing.T) {
	spans := []Span{{Kind: SpanToolCall}, {Kind: SpanLLMCall}}

	r := NewRollout()
	r.StartAttempt(time.Now())
	PopulateAttemptStats(r, spans)
	first := *r.CurrentAttempt()
	PopulateAttemptStats(r, spans)
	require.Equal(t, first, *r.CurrentAttempt())
}

func TestPopulateAttemptStatsOverwrites(t *testing.T) {
	r := NewRollout()
	r.StartAttempt(time.Now())
	PopulateAttemptStats(r, []Span{{Kind: SpanToolCall}, {Kind: SpanToolCall}, {Kind: SpanToolCall}})
	require.Equal(t, uint32(3), r.CurrentAttempt().ToolCalls)

	// A shorter snapshot overwrites rather than accumulates.
	PopulateAttemptStats(r, []Span{{Kind: SpanToolCall}})
	require.Equal(t, uint32(1), r.CurrentAttempt().ToolCalls)
}

func TestPopulateAttemptStatsNoCurrentAttempt(t *testing.T) {
	r := NewRollout()
	PopulateAttemptStats(r, []Span{{Kind: SpanToolCall}})
	require.Nil(t, r.CurrentAttempt())
	require.Empty(t, r.Attempts())
}

func TestCurrentAttemptIsLastStarted(t *testing.T) {
	r := NewRollout()
	r.StartAttempt(time.Unix(1, 0))
	r.CurrentAttempt().Succeeded = false
	r.StartAttempt(time.Unix(2, 0))

	require.Equal(t, time.Unix(2, 0), r.CurrentAttempt().StartedAt)
	require.Len(t, r.Attempts(), 2)
}
