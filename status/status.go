// Package status serves the out-of-band recovery endpoint. Clients that
// connect or reconnect mid-session query it to reconstruct the current task
// queue from the execution tracker instead of replaying event history.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/orchestrator"
	"github.com/halcyonlabs/agentgate/tracker"
)

// TasksResponse is the recovery payload for one channel.
type TasksResponse struct {
	// ChannelID echoes the requested channel.
	ChannelID int64 `json:"channel_id"`
	// Tasks is the most recently broadcast task list for the channel.
	Tasks []orchestrator.Task `json:"tasks"`
}

// Handler returns the recovery API with clue request logging rooted at
// logCtx. Routes:
//
//	GET /channels/{id}/tasks — last-known task queue for the channel;
//	404 when no in-progress session holds tasks for it.
func Handler(logCtx context.Context, tr tracker.Tracker) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /channels/{id}/tasks", func(w http.ResponseWriter, r *http.Request) {
		channelID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid channel id", http.StatusBadRequest)
			return
		}
		tasks, ok, err := tr.PlannerTasks(r.Context(), channelID)
		if err != nil {
			log.Error(r.Context(), err, log.KV{K: "msg", V: "load planner tasks"},
				log.KV{K: "channel_id", V: channelID})
			http.Error(w, "tracker unavailable", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "no tasks recorded for channel", http.StatusNotFound)
			return
		}
		if tasks == nil {
			tasks = []orchestrator.Task{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(TasksResponse{ChannelID: channelID, Tasks: tasks}); err != nil {
			log.Error(r.Context(), err, log.KV{K: "msg", V: "encode tasks response"})
		}
	})
	return log.HTTP(logCtx)(mux)
}
