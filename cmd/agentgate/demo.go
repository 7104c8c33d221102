package main

import (
	"context"
	"time"

	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/dispatcher"
	"github.com/halcyonlabs/agentgate/orchestrator"
	"github.com/halcyonlabs/agentgate/telemetry"
	"github.com/halcyonlabs/agentgate/tools"
)

const (
	demoChannelID int64 = 1
	demoSessionID int64 = 1
)

// runDemo drives a scripted session through the dispatcher: load a toolset,
// plan a queue, work the tasks, complete the session. Connect an observer to
// /ws?channel=1 to watch the events.
func runDemo(ctx context.Context, disp *dispatcher.Dispatcher) {
	log.Info(ctx, log.KV{K: "msg", V: "starting demo session"},
		log.KV{K: "channel_id", V: demoChannelID})

	orc := orchestrator.New()
	collector := telemetry.NewCollector()
	rollout := telemetry.NewRollout()
	rollout.StartAttempt(time.Now())

	demoTools := []tools.Definition{
		{Name: "web_search", Description: "Search the web", Group: tools.GroupWeb},
		{Name: "memory_store", Description: "Store a memory", Group: tools.GroupMemory},
		{Name: "define_tasks", Description: "Replace the task queue", Group: tools.GroupCore},
	}
	disp.ToolsetUpdate(ctx, demoChannelID, string(orc.Context().Mode), "default", demoTools)

	orc.Step()
	orc.AddNote("user asked for a research summary")
	collector.Append(telemetry.Span{Kind: telemetry.SpanLLMCall, Name: "claude", StartedAt: time.Now()})
	disp.TasksUpdate(ctx, demoChannelID, demoSessionID, orc)

	orc.SetMode(orchestrator.ModePlan)
	orc.Step()
	orc.TaskQueue().Replace([]orchestrator.Task{
		{ID: 1, Status: orchestrator.StatusPending, Description: "Search for recent sources"},
		{ID: 2, Status: orchestrator.StatusPending, Description: "Summarize the findings"},
	})
	orc.Context().PlannerCompleted = true
	disp.TasksUpdate(ctx, demoChannelID, demoSessionID, orc)

	orc.SetMode(orchestrator.ModeExecute)
	for {
		task := orc.TaskQueue().StartNext()
		if task == nil {
			break
		}
		disp.TaskStatusChange(ctx, demoChannelID, demoSessionID, task.ID, task.Status, task.Description)
		disp.TaskQueueUpdate(ctx, demoChannelID, demoSessionID, orc)

		orc.Step()
		collector.Append(telemetry.Span{Kind: telemetry.SpanToolCall, Name: "web_search", StartedAt: time.Now()})
		collector.Append(telemetry.Span{Kind: telemetry.SpanReward, Name: "tool_completed", StartedAt: time.Now()})
		collector.Append(telemetry.Span{Kind: telemetry.SpanLLMCall, Name: "claude", StartedAt: time.Now()})
		disp.PopulateAttemptStats(rollout, collector)

		id, ok := orc.TaskQueue().CompleteCurrent()
		if ok {
			disp.TaskStatusChange(ctx, demoChannelID, demoSessionID, id, orchestrator.StatusCompleted, "done")
		}
		disp.TaskQueueUpdate(ctx, demoChannelID, demoSessionID, orc)
		time.Sleep(time.Second)
	}

	orc.SetMode(orchestrator.ModeConclude)
	rollout.CurrentAttempt().Succeeded = true
	disp.SessionComplete(ctx, demoChannelID, demoSessionID)

	attempt := rollout.CurrentAttempt()
	log.Info(ctx, log.KV{K: "msg", V: "demo session complete"},
		log.KV{K: "tool_calls", V: attempt.ToolCalls},
		log.KV{K: "llm_calls", V: attempt.LLMCalls})
}
