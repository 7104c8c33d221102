// Package orchestrator holds the session-scoped reasoning state read by the
// gateway event layer: the current reasoning mode, iteration counters,
// exploration notes, and the task queue. The orchestrator owns this state
// exclusively; the gateway only reads it when synthesizing events.
package orchestrator

import "strings"

type (
	// Mode is the closed set of reasoning modes the orchestrator alternates
	// between during a session. Modes are rendered into events both as their
	// stable tag (the string value) and as a human label via Label.
	Mode string

	// Context is the session-wide mutable state owned by the orchestrator.
	// The gateway reads it through Orchestrator.Context and must not mutate
	// it.
	Context struct {
		// Mode is the reasoning mode currently driving the step loop.
		Mode Mode
		// ModeIterations counts iterations spent in the current mode. Reset
		// on every mode transition.
		ModeIterations int
		// TotalIterations counts iterations across the whole session.
		TotalIterations int
		// ExplorationNotes accumulates findings recorded while exploring.
		ExplorationNotes []string
		// PlannerCompleted reports whether the planner has finished producing
		// the task queue for this session.
		PlannerCompleted bool
		// Queue is the ordered backlog of sub-goals for the session.
		Queue TaskQueue
	}

	// Orchestrator drives one session's step loop and owns its Context. The
	// reasoning algorithm itself lives elsewhere; this type carries the state
	// the gateway projects into events plus the queue transitions the step
	// loop performs around broadcast sites.
	Orchestrator struct {
		ctx Context
	}
)

const (
	// ModeExplore gathers context before any plan exists.
	ModeExplore Mode = "explore"

	// ModePlan produces or revises the task queue.
	ModePlan Mode = "plan"

	// ModeExecute works through queued tasks one at a time.
	ModeExecute Mode = "execute"

	// ModeConclude summarizes results and winds the session down.
	ModeConclude Mode = "conclude"
)

// ParseMode normalizes s to a Mode. It returns the zero value when s is not a
// recognized mode.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(s)) {
	case ModeExplore:
		return ModeExplore
	case ModePlan:
		return ModePlan
	case ModeExecute:
		return ModeExecute
	case ModeConclude:
		return ModeConclude
	default:
		return ""
	}
}

// Label returns the human-readable mode name rendered into status events.
func (m Mode) Label() string {
	switch m {
	case ModeExplore:
		return "Exploring"
	case ModePlan:
		return "Planning"
	case ModeExecute:
		return "Executing tasks"
	case ModeConclude:
		return "Concluding"
	default:
		return "Unknown"
	}
}

// New returns an orchestrator starting in ModeExplore with an empty queue.
func New() *Orchestrator {
	return &Orchestrator{ctx: Context{Mode: ModeExplore}}
}

// Context returns the session context. The returned pointer aliases
// orchestrator-owned state: callers read it to build event snapshots and must
// not mutate it.
func (o *Orchestrator) Context() *Context { return &o.ctx }

// TaskQueue returns the session task queue. Same aliasing contract as Context.
func (o *Orchestrator) TaskQueue() *TaskQueue { return &o.ctx.Queue }

// Step records one iteration in the current mode.
func (o *Orchestrator) Step() {
	o.ctx.ModeIterations++
	o.ctx.TotalIterations++
}

// SetMode transitions to mode and resets the per-mode iteration counter.
// A no-op when mode equals the current mode.
func (o *Orchestrator) SetMode(mode Mode) {
	if mode == o.ctx.Mode {
		return
	}
	o.ctx.Mode = mode
	o.ctx.ModeIterations = 0
}

// AddNote appends an exploration note.
func (o *Orchestrator) AddNote(note string) {
	o.ctx.ExplorationNotes = append(o.ctx.ExplorationNotes, note)
}
