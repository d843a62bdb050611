package sync

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskKind identifies what a sync task synchronizes
type TaskKind string

const (
	TaskKindOrders   TaskKind = "orders"
	TaskKindProducts TaskKind = "products"
)

// Mode selects the look-back window of a sync run
type Mode string

const (
	// ModeIncremental is the short-window re-sync intended to run frequently
	ModeIncremental Mode = "incremental"
	// ModeFull is the long-window repair re-sync intended to run on demand
	ModeFull Mode = "full"
)

// IsValid returns true for a recognized mode
func (m Mode) IsValid() bool {
	return m == ModeIncremental || m == ModeFull
}

// TaskStatus is the lifecycle state of a sync task
type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// IsTerminal returns true for completed/failed
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// TaskResult carries the counters of a finished run. They reflect exactly
// what was committed: pages that failed are not included.
type TaskResult struct {
	Processed int `json:"processed"`
	Pages     int `json:"pages"`
}

// SyncTask is the in-memory progress record of one sync run. Tasks are
// process-local and deliberately not persisted; a restarted process simply
// creates new task IDs.
type SyncTask struct {
	ID         string      `json:"id"`
	ShopID     uuid.UUID   `json:"shop_id"`
	Kind       TaskKind    `json:"kind"`
	Mode       Mode        `json:"mode"`
	Status     TaskStatus  `json:"status"`
	Progress   int         `json:"progress"`
	Message    string      `json:"message"`
	Result     *TaskResult `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`
}

// TaskRegistry is the process-wide registry of sync tasks. All mutations go
// through one mutex; readers receive copies, never pointers into the map.
// This is the only shared mutable state of the sync engine and it is passed
// to consumers explicitly, never accessed through package globals.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*SyncTask
	log   *zap.Logger
}

// NewTaskRegistry creates an empty registry
func NewTaskRegistry(log *zap.Logger) *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]*SyncTask),
		log:   log.Named("task-registry"),
	}
}

// Create registers a new running task and returns its snapshot
func (r *TaskRegistry) Create(shopID uuid.UUID, kind TaskKind, mode Mode) SyncTask {
	now := time.Now()
	task := &SyncTask{
		ID:        uuid.NewString(),
		ShopID:    shopID,
		Kind:      kind,
		Mode:      mode,
		Status:    TaskStatusRunning,
		Message:   "sync started",
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.mu.Lock()
	r.tasks[task.ID] = task
	r.mu.Unlock()

	return *task
}

// UpdateProgress records progress for a running task. Percent is clamped to
// [0,100] and never moves backwards; terminal tasks are immutable.
func (r *TaskRegistry) UpdateProgress(taskID string, percent int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.Status.IsTerminal() {
		return
	}
	if percent > 100 {
		percent = 100
	}
	if percent > task.Progress {
		task.Progress = percent
	}
	if message != "" {
		task.Message = message
	}
	task.UpdatedAt = time.Now()
}

// Complete moves a task to the completed terminal state
func (r *TaskRegistry) Complete(taskID string, result TaskResult, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.Status.IsTerminal() {
		return
	}
	now := time.Now()
	task.Status = TaskStatusCompleted
	task.Progress = 100
	task.Message = message
	task.Result = &result
	task.UpdatedAt = now
	task.FinishedAt = &now
}

// Fail moves a task to the failed terminal state
func (r *TaskRegistry) Fail(taskID string, err error, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok || task.Status.IsTerminal() {
		return
	}
	now := time.Now()
	task.Status = TaskStatusFailed
	task.Message = message
	if err != nil {
		task.Error = err.Error()
	}
	task.UpdatedAt = now
	task.FinishedAt = &now
}

// Get returns a snapshot of a task
func (r *TaskRegistry) Get(taskID string) (SyncTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return SyncTask{}, false
	}
	return *task, true
}

// List returns snapshots of all registered tasks
func (r *TaskRegistry) List() []SyncTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SyncTask, 0, len(r.tasks))
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out
}

// SweepExpired removes terminal tasks older than retention, plus tasks still
// marked running that have not been touched within stallAge (the run died
// without reaching a terminal state). Returns the number of removed tasks.
func (r *TaskRegistry) SweepExpired(retention, stallAge time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, task := range r.tasks {
		switch {
		case task.Status.IsTerminal() && task.FinishedAt != nil && now.Sub(*task.FinishedAt) > retention:
			delete(r.tasks, id)
			removed++
		case !task.Status.IsTerminal() && now.Sub(task.UpdatedAt) > stallAge:
			delete(r.tasks, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs SweepExpired on a ticker until ctx is done
func (r *TaskRegistry) StartSweeper(ctx context.Context, interval, retention, stallAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.SweepExpired(retention, stallAge); n > 0 {
					r.log.Debug("Swept expired sync tasks", zap.Int("removed", n))
				}
			}
		}
	}()
}
