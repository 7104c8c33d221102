// Package redisdb provides a Redis-backed implementation of tracker.Tracker.
// Entries survive process restarts, so a gateway replica that picks up a
// reconnecting client can still serve the last-known task queue. It shares
// the Redis connection the Pulse broadcaster already requires.
package redisdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/halcyonlabs/agentgate/orchestrator"
)

type (
	// Cmdable is the subset of go-redis commands the tracker uses.
	// *redis.Client satisfies it; tests provide fakes.
	Cmdable interface {
		Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
		Get(ctx context.Context, key string) *redis.StringCmd
		Del(ctx context.Context, keys ...string) *redis.IntCmd
	}

	// Options configures the Redis tracker.
	Options struct {
		// Client is the Redis connection. Required.
		Client Cmdable
		// KeyPrefix namespaces tracker keys. Defaults to "agentgate:planner_tasks".
		KeyPrefix string
		// TTL bounds how long an entry may outlive its last write. Zero
		// means entries persist until cleared. A TTL guards against leaked
		// entries when a session dies without reaching the completion path.
		TTL time.Duration
	}

	// Tracker implements tracker.Tracker on Redis. Each channel's task list
	// is stored as a single JSON value, so writes replace the entry whole
	// and concurrent readers never observe a partial list.
	Tracker struct {
		client Cmdable
		prefix string
		ttl    time.Duration
	}
)

// New constructs a Redis tracker. The Client field in opts is required.
func New(opts Options) (*Tracker, error) {
	if opts.Client == nil {
		return nil, errors.New("redis client is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "agentgate:planner_tasks"
	}
	return &Tracker{client: opts.Client, prefix: prefix, ttl: opts.TTL}, nil
}

// SetPlannerTasks implements tracker.Tracker.
func (t *Tracker) SetPlannerTasks(ctx context.Context, channelID int64, tasks []orchestrator.Task) error {
	if tasks == nil {
		tasks = []orchestrator.Task{}
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("marshal planner tasks: %w", err)
	}
	if err := t.client.Set(ctx, t.key(channelID), raw, t.ttl).Err(); err != nil {
		return fmt.Errorf("store planner tasks: %w", err)
	}
	return nil
}

// PlannerTasks implements tracker.Tracker.
func (t *Tracker) PlannerTasks(ctx context.Context, channelID int64) ([]orchestrator.Task, bool, error) {
	raw, err := t.client.Get(ctx, t.key(channelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load planner tasks: %w", err)
	}
	var tasks []orchestrator.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, false, fmt.Errorf("decode planner tasks: %w", err)
	}
	return tasks, true, nil
}

// ClearPlannerTasks implements tracker.Tracker.
func (t *Tracker) ClearPlannerTasks(ctx context.Context, channelID int64) error {
	if err := t.client.Del(ctx, t.key(channelID)).Err(); err != nil {
		return fmt.Errorf("clear planner tasks: %w", err)
	}
	return nil
}

func (t *Tracker) key(channelID int64) string {
	return fmt.Sprintf("%s:%d", t.prefix, channelID)
}
