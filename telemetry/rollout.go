package telemetry

import "time"

type (
	// Attempt is one retry unit within a rollout. Counters are recomputed
	// from span snapshots by PopulateAttemptStats; they overwrite, never
	// accumulate.
	Attempt struct {
		// ToolCalls is the number of tool invocations recorded for the
		// session so far.
		ToolCalls uint32 `json:"tool_calls"`
		// LLMCalls is the number of model invocations recorded for the
		// session so far.
		LLMCalls uint32 `json:"llm_calls"`
		// StartedAt is when the attempt began.
		StartedAt time.Time `json:"started_at"`
		// Succeeded reports whether the attempt reached a successful
		// terminal state.
		Succeeded bool `json:"succeeded"`
	}

	// Rollout is the recorded execution trace of one session, subdivided
	// into attempts. At most one attempt is current: the last one started.
	Rollout struct {
		attempts []Attempt
	}
)

// NewRollout returns a rollout with no attempts.
func NewRollout() *Rollout {
	return &Rollout{}
}

// StartAttempt appends a new attempt and makes it current.
func (r *Rollout) StartAttempt(startedAt time.Time) {
	r.attempts = append(r.attempts, Attempt{StartedAt: startedAt})
}

// CurrentAttempt returns the attempt currently receiving stats, or nil when
// no attempt has been started.
func (r *Rollout) CurrentAttempt() *Attempt {
	if len(r.attempts) == 0 {
		return nil
	}
	return &r.attempts[len(r.attempts)-1]
}

// Attempts returns a copy of all attempts in start order.
func (r *Rollout) Attempts() []Attempt {
	if len(r.attempts) == 0 {
		return nil
	}
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// PopulateAttemptStats recomputes the current attempt's tool and model call
// counters from a span snapshot. Counts are derived fresh each call and
// overwrite the prior values, so the operation is idempotent and independent
// of snapshot order. Reward spans relate to tool activity but the ToolCall
// span is the canonical count; everything else is ignored. A rollout with no
// current attempt is left unchanged.
func PopulateAttemptStats(r *Rollout, spans []Span) {
	var toolCalls, llmCalls uint32
	for _, s := range spans {
		switch s.Kind {
		case SpanToolCall:
			toolCalls++
		case SpanLLMCall:
			llmCalls++
		}
	}
	attempt := r.CurrentAttempt()
	if attempt == nil {
		return
	}
	attempt.ToolCalls = toolCalls
	attempt.LLMCalls = llmCalls
}
