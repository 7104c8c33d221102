package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/orchestrator"
	"github.com/halcyonlabs/agentgate/tracker/inmem"
)

func TestGetTasks(t *testing.T) {
	tr := inmem.New()
	ctx := log.Context(context.Background())
	tasks := []orchestrator.Task{
		{ID: 1, Status: orchestrator.StatusInProgress, Description: "inspect"},
		{ID: 2, Status: orchestrator.StatusPending, Description: "report"},
	}
	require.NoError(t, tr.SetPlannerTasks(ctx, 7, tasks))

	srv := httptest.NewServer(Handler(ctx, tr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/channels/7/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body TasksResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, int64(7), body.ChannelID)
	require.Equal(t, tasks, body.Tasks)
}

func TestGetTasksAbsentChannel(t *testing.T) {
	srv := httptest.NewServer(Handler(log.Context(context.Background()), inmem.New()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/channels/9/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetTasksInvalidChannelID(t *testing.T) {
	srv := httptest.NewServer(Handler(log.Context(context.Background()), inmem.New()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/channels/notanumber/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetTasksEmptyListStillServed(t *testing.T) {
	tr := inmem.New()
	ctx := log.Context(context.Background())
	require.NoError(t, tr.SetPlannerTasks(ctx, 3, nil))

	srv := httptest.NewServer(Handler(ctx, tr))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/channels/3/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body TasksResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Empty(t, body.Tasks)
}
