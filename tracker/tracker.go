// Package tracker defines the execution tracker: a per-channel cache of the
// last-known task queue. The dispatcher overwrites the entry on every
// queue-affecting broadcast and clears it on session completion; the status
// endpoint reads it so clients that connect or reconnect mid-session can
// reconstruct current state without replaying events.
package tracker

import (
	"context"

	"github.com/halcyonlabs/agentgate/orchestrator"
)

// Tracker stores the most recently broadcast task list per channel. Entries
// are replaced whole: implementations must never expose a partially written
// list to concurrent readers. An absent entry means no in-progress session
// holds tasks for the channel.
type Tracker interface {
	// SetPlannerTasks replaces the channel's entry with a copy of tasks.
	SetPlannerTasks(ctx context.Context, channelID int64, tasks []orchestrator.Task) error

	// PlannerTasks returns the channel's last-known task list and whether an
	// entry exists. The returned slice is the caller's to keep.
	PlannerTasks(ctx context.Context, channelID int64) ([]orchestrator.Task, bool, error)

	// ClearPlannerTasks removes the channel's entry. Clearing an absent
	// entry is a no-op.
	ClearPlannerTasks(ctx context.Context, channelID int64) error
}
