// Package telemetry records execution traces for agent sessions. A Collector
// accumulates spans (tool calls, model calls, reward observations) as the
// session runs; a Rollout groups the session's attempts and carries the
// per-attempt counters derived from span snapshots.
package telemetry

import (
	"sync"
	"time"
)

type (
	// SpanKind classifies a recorded span.
	SpanKind string

	// Span is a single recorded occurrence of a traceable operation. Spans
	// are immutable once appended to a collector.
	Span struct {
		// Kind classifies the span.
		Kind SpanKind `json:"kind"`
		// Name identifies the operation (tool name, model identifier,
		// reward signal name).
		Name string `json:"name"`
		// StartedAt is when the operation began.
		StartedAt time.Time `json:"started_at"`
		// Duration is the operation's wall-clock duration. Zero for
		// point-in-time observations such as rewards.
		Duration time.Duration `json:"duration,omitempty"`
		// Attributes carries operation-specific metadata.
		Attributes map[string]any `json:"attributes,omitempty"`
	}

	// Collector is an append-only span record. Append and Snapshot are safe
	// for concurrent use; a snapshot is a stable copy of the history up to
	// the instant it was taken.
	Collector struct {
		mu    sync.Mutex
		spans []Span
	}
)

const (
	// SpanToolCall records one tool invocation. This is the canonical record
	// for tool activity: a single invocation may also emit reward spans, but
	// only the ToolCall span contributes to tool-call counts.
	SpanToolCall SpanKind = "tool_call"

	// SpanLLMCall records one model invocation.
	SpanLLMCall SpanKind = "llm_call"

	// SpanReward records a reward observation (for example tool completion
	// feedback). Excluded from call counts.
	SpanReward SpanKind = "reward"
)

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Append records a span.
func (c *Collector) Append(s Span) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spans = append(c.spans, s)
}

// Snapshot returns a copy of all spans recorded so far, in append order.
func (c *Collector) Snapshot() []Span {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.spans) == 0 {
		return nil
	}
	out := make([]Span, len(c.spans))
	copy(out, c.spans)
	return out
}

// Len returns the number of spans recorded so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spans)
}
