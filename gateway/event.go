// Package gateway defines the event model delivered to observing clients of
// an agent session. Events are immutable value objects scoped to a channel
// (and, for session-bound kinds, to a session within that channel). They are
// synthesized by the dispatcher from orchestrator and tool-registry state and
// handed to a Broadcaster for fan-out delivery.
//
// All event types implement the Event interface by embedding Base. Transports
// (Pulse streams, websocket hubs) marshal events generically through Type,
// ChannelID, SessionID, and Payload; consumers that need structured access
// type-assert to the concrete event types.
package gateway

import (
	"context"

	"github.com/halcyonlabs/agentgate/orchestrator"
)

type (
	// Event describes a gateway notification delivered to clients through a
	// Broadcaster. Events are immutable after construction and safe to hand
	// to concurrent transports.
	Event interface {
		// Type returns the event kind constant (e.g., EventTaskQueueUpdate).
		Type() EventType

		// ChannelID returns the channel the event is scoped to. Every event
		// targets exactly one channel; delivery to other channels' observers
		// never occurs.
		ChannelID() int64

		// SessionID returns the session within the channel that produced the
		// event, or zero for events not bound to a session (toolset and
		// status summaries).
		SessionID() int64

		// Payload returns the kind-specific data in a JSON-serializable
		// form. Transports marshal this value when publishing events.
		Payload() any
	}

	// Broadcaster fans an event out to all currently subscribed observers of
	// the event's channel. Delivery is fire-and-forget: implementations
	// absorb transport failures, never retry on behalf of the caller, and
	// treat zero subscribers as a harmless no-op. Events for different
	// channels are independent; only per-channel ordering is preserved.
	Broadcaster interface {
		Broadcast(ctx context.Context, event Event)
	}

	// ToolsetUpdate announces the tools active for the current mode and
	// subtype so debug UIs can render the live toolset without the full
	// registry schema.
	ToolsetUpdate struct {
		Base
		Data ToolsetUpdatePayload
	}

	// TasksUpdate summarizes session progress: mode, iteration counters, and
	// note count. Its task list is always empty; the detailed queue travels
	// in a companion TaskQueueUpdate whenever tasks exist.
	TasksUpdate struct {
		Base
		Data TasksUpdatePayload
	}

	// TaskQueueUpdate carries the full task backlog plus the current task
	// id, if any. The dispatcher mirrors the same task list into the
	// execution tracker before this event is broadcast.
	TaskQueueUpdate struct {
		Base
		Data TaskQueueUpdatePayload
	}

	// TaskStatusChange announces a single task transition (for example
	// pending to in_progress).
	TaskStatusChange struct {
		Base
		Data TaskStatusChangePayload
	}

	// SessionComplete announces that a session finished. After this event no
	// further task events are meaningful for the session, and the tracker
	// entry for the channel has been cleared.
	SessionComplete struct {
		Base
		Data SessionCompletePayload
	}

	// ToolSummary is the projection of a tool definition carried by toolset
	// updates: name and description verbatim, group rendered as its
	// human-readable label.
	ToolSummary struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}

	// ToolsetUpdatePayload is the typed wire payload for toolset updates.
	ToolsetUpdatePayload struct {
		// Mode is the reasoning mode tag the toolset was loaded for.
		Mode string `json:"mode"`
		// Subtype is the agent subtype tag the toolset was loaded for.
		Subtype string `json:"subtype"`
		// Tools summarizes every active tool, in registry order.
		Tools []ToolSummary `json:"tools"`
	}

	// ProgressStats carries the scalar progress counters of a status
	// summary.
	ProgressStats struct {
		// Iterations counts iterations in the current mode.
		Iterations int `json:"iterations"`
		// TotalIterations counts iterations across the session.
		TotalIterations int `json:"total_iterations"`
		// NotesCount is the number of exploration notes recorded.
		NotesCount int `json:"notes_count"`
	}

	// TasksUpdatePayload is the typed wire payload for status summaries.
	// Tasks is always empty: task listing travels in TaskQueueUpdate.
	TasksUpdatePayload struct {
		Mode      string              `json:"mode"`
		ModeLabel string              `json:"mode_label"`
		Tasks     []orchestrator.Task `json:"tasks"`
		Stats     ProgressStats       `json:"stats"`
	}

	// TaskQueueUpdatePayload is the typed wire payload for queue updates.
	TaskQueueUpdatePayload struct {
		// Tasks is the full backlog in queue order.
		Tasks []orchestrator.Task `json:"tasks"`
		// CurrentTaskID identifies the task presently being worked. Nil when
		// the orchestrator has not marked one; consumers must not infer a
		// substitute.
		CurrentTaskID *uint32 `json:"current_task_id,omitempty"`
	}

	// TaskStatusChangePayload is the typed wire payload for task status
	// transitions.
	TaskStatusChangePayload struct {
		TaskID      uint32                  `json:"task_id"`
		Status      orchestrator.TaskStatus `json:"status"`
		Description string                  `json:"description"`
	}

	// SessionCompletePayload is the typed wire payload for session
	// completion. It is intentionally empty: channel and session ids are
	// carried on the envelope.
	SessionCompletePayload struct{}

	// Base provides a default implementation of Event. Concrete event types
	// embed it to inherit the Type, ChannelID, SessionID, and Payload
	// methods. Fields are unexported; construct events through NewBase or
	// the per-kind constructors.
	Base struct {
		t EventType
		c int64
		s int64
		p any
	}
)

// EventType enumerates gateway event kinds.
type EventType string

const (
	// EventToolsetUpdate announces the active toolset for a mode/subtype.
	EventToolsetUpdate EventType = "toolset_update"

	// EventTasksUpdate summarizes session progress with scalar counters and
	// an always-empty task list.
	EventTasksUpdate EventType = "tasks_update"

	// EventTaskQueueUpdate carries the full task backlog and current task.
	EventTaskQueueUpdate EventType = "task_queue_update"

	// EventTaskStatusChange announces a single task status transition.
	EventTaskStatusChange EventType = "task_status_change"

	// EventSessionComplete announces that a session finished.
	EventSessionComplete EventType = "session_complete"
)

// NewBase constructs a Base with the given kind, channel id, session id
// (zero when the kind is not session-bound), and payload.
func NewBase(t EventType, channelID, sessionID int64, payload any) Base {
	return Base{t: t, c: channelID, s: sessionID, p: payload}
}

// Type implements Event.Type.
func (e Base) Type() EventType { return e.t }

// ChannelID implements Event.ChannelID.
func (e Base) ChannelID() int64 { return e.c }

// SessionID implements Event.SessionID.
func (e Base) SessionID() int64 { return e.s }

// Payload implements Event.Payload.
func (e Base) Payload() any { return e.p }

// NewToolsetUpdate builds a toolset update event for channelID.
func NewToolsetUpdate(channelID int64, mode, subtype string, tools []ToolSummary) ToolsetUpdate {
	p := ToolsetUpdatePayload{Mode: mode, Subtype: subtype, Tools: tools}
	return ToolsetUpdate{Base: NewBase(EventToolsetUpdate, channelID, 0, p), Data: p}
}

// NewTasksUpdate builds a status summary event for channelID. The task list
// in the payload is always empty regardless of queue state.
func NewTasksUpdate(channelID int64, mode, modeLabel string, stats ProgressStats) TasksUpdate {
	p := TasksUpdatePayload{Mode: mode, ModeLabel: modeLabel, Tasks: []orchestrator.Task{}, Stats: stats}
	return TasksUpdate{Base: NewBase(EventTasksUpdate, channelID, 0, p), Data: p}
}

// NewTaskQueueUpdate builds a detailed queue event for channelID/sessionID.
func NewTaskQueueUpdate(channelID, sessionID int64, tasks []orchestrator.Task, currentTaskID *uint32) TaskQueueUpdate {
	p := TaskQueueUpdatePayload{Tasks: tasks, CurrentTaskID: currentTaskID}
	return TaskQueueUpdate{Base: NewBase(EventTaskQueueUpdate, channelID, sessionID, p), Data: p}
}

// NewTaskStatusChange builds a task transition event for channelID/sessionID.
func NewTaskStatusChange(channelID, sessionID int64, taskID uint32, status orchestrator.TaskStatus, description string) TaskStatusChange {
	p := TaskStatusChangePayload{TaskID: taskID, Status: status, Description: description}
	return TaskStatusChange{Base: NewBase(EventTaskStatusChange, channelID, sessionID, p), Data: p}
}

// NewSessionComplete builds a session completion event for channelID/sessionID.
func NewSessionComplete(channelID, sessionID int64) SessionComplete {
	p := SessionCompletePayload{}
	return SessionComplete{Base: NewBase(EventSessionComplete, channelID, sessionID, p), Data: p}
}
