package orchestrator

type (
	// TaskStatus tags a task's lifecycle position within the queue.
	TaskStatus string

	// Task is one sub-goal in the orchestrator's backlog. IDs are unique
	// within a queue and stable for the lifetime of the session.
	Task struct {
		// ID identifies the task within its queue.
		ID uint32 `json:"id"`
		// Status is the task's lifecycle tag.
		Status TaskStatus `json:"status"`
		// Description is the human-readable task statement.
		Description string `json:"description"`
		// AutoCompleteTool, when non-empty, names a tool whose successful
		// execution completes this task without an explicit planner step.
		AutoCompleteTool string `json:"auto_complete_tool,omitempty"`
	}

	// TaskQueue is the ordered backlog of tasks plus at most one current
	// task. "Current" is orchestrator-defined: when no task has been marked
	// current there is no well-defined current task and CurrentTask returns
	// nil. Readers must not substitute a guess (such as the first pending
	// task).
	TaskQueue struct {
		tasks   []Task
		current int // 1-based index into tasks, 0 when none
	}
)

const (
	// StatusPending marks a task not yet started.
	StatusPending TaskStatus = "pending"

	// StatusInProgress marks the task presently being worked.
	StatusInProgress TaskStatus = "in_progress"

	// StatusCompleted marks a finished task.
	StatusCompleted TaskStatus = "completed"

	// StatusFailed marks a task abandoned after an unrecoverable error.
	StatusFailed TaskStatus = "failed"
)

// NewTaskQueue returns a queue holding tasks in order with no current task.
// The zero value is also a valid empty queue.
func NewTaskQueue(tasks ...Task) TaskQueue {
	var q TaskQueue
	q.tasks = append(q.tasks, tasks...)
	return q
}

// Tasks returns a copy of the task list in queue order.
func (q *TaskQueue) Tasks() []Task {
	if len(q.tasks) == 0 {
		return nil
	}
	out := make([]Task, len(q.tasks))
	copy(out, q.tasks)
	return out
}

// Len returns the number of tasks in the queue.
func (q *TaskQueue) Len() int { return len(q.tasks) }

// IsEmpty reports whether the queue holds no tasks.
func (q *TaskQueue) IsEmpty() bool { return len(q.tasks) == 0 }

// AllComplete reports whether every task is completed or failed. An empty
// queue is not considered complete.
func (q *TaskQueue) AllComplete() bool {
	if len(q.tasks) == 0 {
		return false
	}
	for _, t := range q.tasks {
		if t.Status != StatusCompleted && t.Status != StatusFailed {
			return false
		}
	}
	return true
}

// CurrentTask returns the task presently being worked, or nil when the
// orchestrator has not marked one.
func (q *TaskQueue) CurrentTask() *Task {
	if q.current < 1 || q.current > len(q.tasks) {
		return nil
	}
	return &q.tasks[q.current-1]
}

// Push appends a task to the queue.
func (q *TaskQueue) Push(t Task) {
	q.tasks = append(q.tasks, t)
}

// Replace swaps the entire backlog for tasks and clears the current marker.
// The planner uses this when it re-plans a session from scratch.
func (q *TaskQueue) Replace(tasks []Task) {
	q.tasks = append(q.tasks[:0:0], tasks...)
	q.current = 0
}

// StartNext marks the first pending task as current and in progress. Returns
// the started task, or nil when no pending task remains.
func (q *TaskQueue) StartNext() *Task {
	for i := range q.tasks {
		if q.tasks[i].Status == StatusPending {
			q.tasks[i].Status = StatusInProgress
			q.current = i + 1
			return &q.tasks[i]
		}
	}
	return nil
}

// CompleteCurrent marks the current task completed and clears the current
// marker. Returns the completed task id, or false when no task is current.
func (q *TaskQueue) CompleteCurrent() (uint32, bool) {
	cur := q.CurrentTask()
	if cur == nil {
		return 0, false
	}
	cur.Status = StatusCompleted
	id := cur.ID
	q.current = 0
	return id, true
}

// FailCurrent marks the current task failed and clears the current marker.
// Returns the failed task id, or false when no task is current.
func (q *TaskQueue) FailCurrent() (uint32, bool) {
	cur := q.CurrentTask()
	if cur == nil {
		return 0, false
	}
	cur.Status = StatusFailed
	id := cur.ID
	q.current = 0
	return id, true
}
