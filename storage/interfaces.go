package storage

import (
	"context"

	"github.com/poiesic/metasearch/core"
)

// TaskRepository provides durable storage for task records.
// Implementations must be thread-safe and support concurrent access.
//
// The in-memory copy held by the scheduler is authoritative for the
// duration of a session; this store exists for write-through persistence
// and session reload. Store errors must never block in-memory operation.
type TaskRepository interface {
	// UpsertTask inserts or replaces a task record.
	UpsertTask(ctx context.Context, task *core.Task) error

	// GetTask retrieves a single task by session and task id.
	// Returns ErrNotFound if the task doesn't exist.
	GetTask(ctx context.Context, sessionId, taskId string) (*core.Task, error)

	// GetSessionTasks retrieves all tasks for a session owned by ownerId,
	// ordered by creation time. An unknown session yields an empty slice,
	// not an error.
	GetSessionTasks(ctx context.Context, sessionId, ownerId string) ([]*core.Task, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// PlanningRepository provides durable storage for planning state.
// One record exists per session.
type PlanningRepository interface {
	// SavePlanningState inserts or replaces the planning state for its session.
	SavePlanningState(ctx context.Context, state *core.PlanningState) error

	// GetPlanningState retrieves the planning state for a session.
	// Absence of a record is not an error: returns (nil, nil).
	GetPlanningState(ctx context.Context, sessionId, ownerId string) (*core.PlanningState, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
