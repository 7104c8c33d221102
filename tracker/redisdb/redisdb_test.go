package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/halcyonlabs/agentgate/orchestrator"
)

// fakeCmdable implements Cmdable on a plain map.
type fakeCmdable struct {
	data map[string]string
	err  error
}

func newFake() *fakeCmdable {
	return &fakeCmdable{data: make(map[string]string)}
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(Options{})
	require.EqualError(t, err, "redis client is required")
}

func TestRoundTrip(t *testing.T) {
	fake := newFake()
	tr, err := New(Options{Client: fake})
	require.NoError(t, err)
	ctx := context.Background()

	tasks := []orchestrator.Task{
		{ID: 1, Status: orchestrator.StatusInProgress, Description: "inspect"},
		{ID: 2, Status: orchestrator.StatusPending, Description: "report"},
	}
	require.NoError(t, tr.SetPlannerTasks(ctx, 7, tasks))

	got, ok, err := tr.PlannerTasks(ctx, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, tasks, got)
}

func TestStoredValueIsSingleJSONEntry(t *testing.T) {
	fake := newFake()
	tr, err := New(Options{Client: fake, KeyPrefix: "test:tasks"})
	require.NoError(t, err)

	require.NoError(t, tr.SetPlannerTasks(context.Background(), 3, []orchestrator.Task{{ID: 5}}))

	raw, ok := fake.data["test:tasks:3"]
	require.True(t, ok)
	var decoded []orchestrator.Task
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Equal(t, uint32(5), decoded[0].ID)
}

func TestMissingEntry(t *testing.T) {
	tr, err := New(Options{Client: newFake()})
	require.NoError(t, err)

	got, ok, err := tr.PlannerTasks(context.Background(), 42)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
}

func TestClear(t *testing.T) {
	fake := newFake()
	tr, err := New(Options{Client: fake})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, tr.SetPlannerTasks(ctx, 9, []orchestrator.Task{{ID: 1}}))
	require.NoError(t, tr.ClearPlannerTasks(ctx, 9))

	_, ok, err := tr.PlannerTasks(ctx, 9)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, tr.ClearPlannerTasks(ctx, 9))
}

func TestNilTasksStoredAsEmptyList(t *testing.T) {
	fake := newFake()
	tr, err := New(Options{Client: fake})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, tr.SetPlannerTasks(ctx, 1, nil))
	got, ok, err := tr.PlannerTasks(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, got)
}

func TestErrorsAreWrapped(t *testing.T) {
	fake := newFake()
	fake.err = errors.New("connection refused")
	tr, err := New(Options{Client: fake})
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorContains(t, tr.SetPlannerTasks(ctx, 1, nil), "store planner tasks")
	_, _, err = tr.PlannerTasks(ctx, 1)
	require.ErrorContains(t, err, "load planner tasks")
	require.ErrorContains(t, tr.ClearPlannerTasks(ctx, 1), "clear planner tasks")
}
