// Package dispatcher synthesizes gateway events from orchestrator and
// tool-registry state and pushes them through a broadcaster. It is the single
// place where cross-cutting views (toolset, task queue, status counters) are
// projected, so UI state always matches orchestrator state: the dispatcher
// mirrors every queue-affecting update into the execution tracker before the
// corresponding broadcast, and clears the tracker when a session completes.
//
// Dispatcher methods are synchronous projections over already-materialized
// state. Per-channel event ordering follows from the caller serializing calls
// per session (a single active stepper per session); no ordering holds across
// channels.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/gateway"
	"github.com/halcyonlabs/agentgate/orchestrator"
	"github.com/halcyonlabs/agentgate/telemetry"
	"github.com/halcyonlabs/agentgate/tools"
	"github.com/halcyonlabs/agentgate/tracker"
)

type (
	// SessionState is the read-only view of an orchestrator the dispatcher
	// projects from. *orchestrator.Orchestrator satisfies it.
	SessionState interface {
		// Context returns the session context. The dispatcher reads it and
		// must not mutate it.
		Context() *orchestrator.Context
		// TaskQueue returns the session task queue, same read-only contract.
		TaskQueue() *orchestrator.TaskQueue
	}

	// Options configures a Dispatcher.
	Options struct {
		// Broadcaster delivers synthesized events. Required.
		Broadcaster gateway.Broadcaster
		// Tracker caches the last-known task queue per channel. Required.
		Tracker tracker.Tracker
	}

	// Dispatcher builds immutable gateway events from subsystem state and
	// hands them to the broadcaster. Collaborator failures (tracker storage,
	// transport delivery) are logged and absorbed: the dispatcher has no
	// fallible public operation.
	Dispatcher struct {
		broadcaster gateway.Broadcaster
		tracker     tracker.Tracker
		events      metric.Int64Counter
	}
)

// New constructs a Dispatcher. Both the broadcaster and the tracker are
// required.
func New(opts Options) (*Dispatcher, error) {
	if opts.Broadcaster == nil {
		return nil, errors.New("broadcaster is required")
	}
	if opts.Tracker == nil {
		return nil, errors.New("tracker is required")
	}
	meter := otel.Meter("github.com/halcyonlabs/agentgate/dispatcher")
	events, err := meter.Int64Counter("agentgate.events.broadcast",
		metric.WithDescription("Gateway events handed to the broadcaster"))
	if err != nil {
		return nil, fmt.Errorf("create event counter: %w", err)
	}
	return &Dispatcher{
		broadcaster: opts.Broadcaster,
		tracker:     opts.Tracker,
		events:      events,
	}, nil
}

// ToolsetUpdate broadcasts the tools active for the current mode and subtype
// so debug UIs can show the live toolset. Pure projection: name and
// description are carried verbatim, the group as its human-readable label.
// An empty tool list yields an event with an empty summary list.
func (d *Dispatcher) ToolsetUpdate(ctx context.Context, channelID int64, mode, subtype string, defs []tools.Definition) {
	summaries := make([]gateway.ToolSummary, len(defs))
	for i, def := range defs {
		summaries[i] = gateway.ToolSummary{
			Name:        def.Name,
			Description: def.Description,
			Group:       def.Group.Label(),
		}
	}
	d.emit(ctx, gateway.NewToolsetUpdate(channelID, mode, subtype, summaries))
}

// TasksUpdate broadcasts a status summary for the session: mode tag and
// label, iteration counters, and exploration note count. The summary's task
// list is always empty; when the queue holds tasks a detailed
// TaskQueueUpdate is composed immediately after, so observers always receive
// the full queue alongside the summary whenever tasks exist.
func (d *Dispatcher) TasksUpdate(ctx context.Context, channelID, sessionID int64, state SessionState) {
	sctx := state.Context()
	stats := gateway.ProgressStats{
		Iterations:      sctx.ModeIterations,
		TotalIterations: sctx.TotalIterations,
		NotesCount:      len(sctx.ExplorationNotes),
	}
	hasTasks := !state.TaskQueue().IsEmpty()

	d.emit(ctx, gateway.NewTasksUpdate(channelID, string(sctx.Mode), sctx.Mode.Label(), stats))

	if hasTasks {
		d.TaskQueueUpdate(ctx, channelID, sessionID, state)
	}
}

// TaskQueueUpdate broadcasts the full task backlog and current task id. The
// tracker entry for the channel is overwritten with the same task list before
// the broadcast, so a client that reacts to the event by querying the
// recovery endpoint never observes a stale or missing entry.
func (d *Dispatcher) TaskQueueUpdate(ctx context.Context, channelID, sessionID int64, state SessionState) {
	queue := state.TaskQueue()
	tasks := queue.Tasks()
	var currentTaskID *uint32
	if cur := queue.CurrentTask(); cur != nil {
		id := cur.ID
		currentTaskID = &id
	}

	if err := d.tracker.SetPlannerTasks(ctx, channelID, tasks); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "store planner tasks"},
			log.KV{K: "channel_id", V: channelID})
	}

	d.emit(ctx, gateway.NewTaskQueueUpdate(channelID, sessionID, tasks, currentTaskID))
}

// TaskStatusChange broadcasts a single task transition. Pure pass-through:
// no derived computation, no tracker interaction.
func (d *Dispatcher) TaskStatusChange(ctx context.Context, channelID, sessionID int64, taskID uint32, status orchestrator.TaskStatus, description string) {
	d.emit(ctx, gateway.NewTaskStatusChange(channelID, sessionID, taskID, status, description))
}

// SessionComplete clears the channel's tracker entry and broadcasts session
// completion. The tracker serves in-progress recovery only: once the session
// is complete a lingering entry would misrepresent a finished session to a
// late-joining observer, so it is removed before the event goes out.
func (d *Dispatcher) SessionComplete(ctx context.Context, channelID, sessionID int64) {
	if err := d.tracker.ClearPlannerTasks(ctx, channelID); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "clear planner tasks"},
			log.KV{K: "channel_id", V: channelID})
	}

	d.emit(ctx, gateway.NewSessionComplete(channelID, sessionID))
}

// PopulateAttemptStats recomputes the rollout's current attempt counters from
// a fresh collector snapshot. A rollout with no current attempt is left
// unchanged.
func (d *Dispatcher) PopulateAttemptStats(rollout *telemetry.Rollout, collector *telemetry.Collector) {
	telemetry.PopulateAttemptStats(rollout, collector.Snapshot())
}

func (d *Dispatcher) emit(ctx context.Context, event gateway.Event) {
	d.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event.type", string(event.Type()))))
	log.Debug(ctx, log.KV{K: "msg", V: "broadcast gateway event"},
		log.KV{K: "event", V: string(event.Type())},
		log.KV{K: "channel_id", V: event.ChannelID()})
	d.broadcaster.Broadcast(ctx, event)
}
