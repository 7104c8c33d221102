// Package inmem provides an in-memory implementation of tracker.Tracker for
// tests and single-process deployments. Entries do not survive process
// restarts; deployments that need recovery across restarts should use
// tracker/redisdb.
package inmem

import (
	"context"
	"sync"

	"github.com/halcyonlabs/agentgate/orchestrator"
)

// Tracker implements tracker.Tracker in memory. All operations are
// thread-safe via sync.RWMutex. Task lists are defensively copied on read and
// write so readers never observe a list the dispatcher is still building.
type Tracker struct {
	mu    sync.RWMutex
	tasks map[int64][]orchestrator.Task
}

// New constructs an empty Tracker.
func New() *Tracker {
	return &Tracker{tasks: make(map[int64][]orchestrator.Task)}
}

// SetPlannerTasks implements tracker.Tracker. It never returns an error (the
// error return exists only to satisfy the interface).
func (t *Tracker) SetPlannerTasks(_ context.Context, channelID int64, tasks []orchestrator.Task) error {
	copied := make([]orchestrator.Task, len(tasks))
	copy(copied, tasks)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks[channelID] = copied
	return nil
}

// PlannerTasks implements tracker.Tracker. It never returns an error.
func (t *Tracker) PlannerTasks(_ context.Context, channelID int64) ([]orchestrator.Task, bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	stored, ok := t.tasks[channelID]
	if !ok {
		return nil, false, nil
	}
	out := make([]orchestrator.Task, len(stored))
	copy(out, stored)
	return out, true, nil
}

// ClearPlannerTasks implements tracker.Tracker. It never returns an error.
func (t *Tracker) ClearPlannerTasks(_ context.Context, channelID int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tasks, channelID)
	return nil
}

// Reset clears all entries. Useful in tests to isolate cases; not part of
// the tracker.Tracker interface.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tasks = make(map[int64][]orchestrator.Task)
}
