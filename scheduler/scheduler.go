package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/events"
	"github.com/poiesic/metasearch/storage"
)

// priorityRank orders priorities for scheduling, highest first.
var priorityRank = map[core.TaskPriority]int{
	core.PriorityHigh:   0,
	core.PriorityMedium: 1,
	core.PriorityLow:    2,
}

// Scheduler owns the task records of one search session. The in-memory map
// is authoritative for the whole session; every successful mutation is
// written through to the repository asynchronously and emitted on the
// session's event bus. Persistence failures are logged and never roll back
// the in-memory state.
//
// A Scheduler is confined to its session's goroutine. Only the persistence
// worker runs concurrently, and it operates on snapshots.
type Scheduler struct {
	sessionId string
	ownerId   string
	tasks     map[string]*core.Task
	order     []string // insertion order, for priority tie-breaks
	repo      storage.TaskRepository
	bus       *events.Bus
	pool      *ants.Pool // single worker, so writes retire in mutation order
	logger    *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a scheduler for one session.
func New(sessionId, ownerId string, repo storage.TaskRepository, bus *events.Bus, opts ...Option) (*Scheduler, error) {
	if repo == nil {
		return nil, ErrTaskRepositoryRequired
	}
	if bus == nil {
		return nil, ErrBusRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		sessionId: sessionId,
		ownerId:   ownerId,
		tasks:     make(map[string]*core.Task),
		repo:      repo,
		bus:       bus,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	return s, nil
}

// CreateTaskInput holds the caller-supplied fields of a new task.
type CreateTaskInput struct {
	Id          string // optional; derived from content when empty
	Title       string
	Description string
	Priority    core.TaskPriority // defaults to medium
	DependsOn   []string
	Tags        []string
	Metadata    map[string]string
}

// CreateTask creates a task with status pending. Title must be non-empty and
// every DependsOn entry must reference an existing task in this session.
func (s *Scheduler) CreateTask(ctx context.Context, input CreateTaskInput) (*core.Task, error) {
	now := time.Now().UTC()

	priority := input.Priority
	if priority == "" {
		priority = core.PriorityMedium
	}

	id := input.Id
	if id == "" {
		id = core.IDFromContent(s.sessionId + "/" + input.Title + "/" + now.Format(time.RFC3339Nano))
	}

	task := &core.Task{
		Id:          id,
		SessionId:   s.sessionId,
		OwnerId:     s.ownerId,
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		Status:      core.StatusPending,
		DependsOn:   slices.Clone(input.DependsOn),
		CreatedAt:   now,
		UpdatedAt:   now,
		Tags:        slices.Clone(input.Tags),
		Metadata:    input.Metadata,
	}

	if err := core.ValidateTask(task); err != nil {
		return nil, err
	}
	if _, exists := s.tasks[task.Id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, task.Id)
	}
	for _, dep := range task.DependsOn {
		if _, ok := s.tasks[dep]; !ok {
			return nil, fmt.Errorf("%w: %w: %s", core.ErrValidation, core.ErrUnknownDependency, dep)
		}
	}

	s.tasks[task.Id] = task
	s.order = append(s.order, task.Id)

	s.emit(events.TaskCreated, task)
	s.persist(task)
	return snapshot(task), nil
}

// TaskUpdate holds a partial task mutation. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *core.TaskPriority
	Status      *core.TaskStatus
	Tags        []string
	Metadata    map[string]string
}

// UpdateTask merges the partial update into the task, bumps UpdatedAt, and
// sets CompletedAt iff the status becomes completed. Invariants are
// revalidated before any field is mutated.
func (s *Scheduler) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*core.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	if update.Title != nil && *update.Title == "" {
		return nil, fmt.Errorf("%w: %w", core.ErrValidation, core.ErrEmptyTitle)
	}
	if update.Priority != nil {
		if err := core.ValidatePriority(*update.Priority); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
		}
	}
	if update.Status != nil {
		if err := core.ValidateStatus(*update.Status); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
		}
		if err := core.ValidateTransition(task.Status, *update.Status); err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrValidation, err)
		}
	}

	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.Tags != nil {
		task.Tags = slices.Clone(update.Tags)
	}
	for k, v := range update.Metadata {
		if task.Metadata == nil {
			task.Metadata = make(map[string]string)
		}
		task.Metadata[k] = v
	}

	action := events.TaskUpdated
	if update.Status != nil && *update.Status != task.Status {
		task.Status = *update.Status
		switch task.Status {
		case core.StatusCompleted:
			now := time.Now().UTC()
			task.CompletedAt = &now
			action = events.TaskCompleted
		case core.StatusCancelled:
			action = events.TaskCancelled
		}
	}
	task.UpdatedAt = time.Now().UTC()

	s.emit(action, task)
	s.persist(task)
	return snapshot(task), nil
}

// GetTask returns a snapshot of the task with the given id.
func (s *Scheduler) GetTask(id string) (*core.Task, error) {
	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return snapshot(task), nil
}

// GetNextTask returns the highest-priority pending task whose dependencies
// are all completed. Ties are broken by priority (high > medium > low) and
// then by insertion order. Returns nil when no task qualifies.
func (s *Scheduler) GetNextTask() *core.Task {
	var best *core.Task
	for _, id := range s.order {
		task := s.tasks[id]
		if task.Status != core.StatusPending || !s.depsCompleted(task) {
			continue
		}
		if best == nil || priorityRank[task.Priority] < priorityRank[best.Priority] {
			best = task
		}
	}
	if best == nil {
		return nil
	}
	return snapshot(best)
}

// AddDependency appends dependsOnId to taskId's prerequisites. The edge is
// rejected with core.ErrDependencyCycle when it would make the dependency
// graph cyclic; on rejection the graph is unchanged. Adding an existing
// edge is a no-op.
func (s *Scheduler) AddDependency(ctx context.Context, taskId, dependsOnId string) error {
	task, ok := s.tasks[taskId]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, taskId)
	}
	if _, ok := s.tasks[dependsOnId]; !ok {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, dependsOnId)
	}
	if taskId == dependsOnId {
		return fmt.Errorf("%w: task %q depends on itself", core.ErrDependencyCycle, taskId)
	}
	if slices.Contains(task.DependsOn, dependsOnId) {
		return nil
	}
	// The new edge closes a cycle exactly when taskId is already reachable
	// from dependsOnId through the existing depends-on edges.
	if s.reachable(dependsOnId, taskId) {
		return fmt.Errorf("%w: %s -> %s", core.ErrDependencyCycle, taskId, dependsOnId)
	}

	task.DependsOn = append(task.DependsOn, dependsOnId)
	task.UpdatedAt = time.Now().UTC()

	s.emit(events.TaskUpdated, task)
	s.persist(task)
	return nil
}

// Tasks returns snapshots of all tasks in insertion order.
func (s *Scheduler) Tasks() []*core.Task {
	out := make([]*core.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, snapshot(s.tasks[id]))
	}
	return out
}

// LoadSession replaces the in-memory state with the tasks persisted for this
// session, ordered by creation time. Used on session resume.
func (s *Scheduler) LoadSession(ctx context.Context) error {
	tasks, err := s.repo.GetSessionTasks(ctx, s.sessionId, s.ownerId)
	if err != nil {
		return err
	}

	s.tasks = make(map[string]*core.Task, len(tasks))
	s.order = make([]string, 0, len(tasks))
	for _, task := range tasks {
		s.tasks[task.Id] = task
		s.order = append(s.order, task.Id)
	}
	return nil
}

// Release waits for outstanding persistence writes and frees the worker
// pool. The scheduler should not be used after calling Release.
func (s *Scheduler) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// reachable reports whether target can be reached from start by following
// depends-on edges, using a depth-first traversal with a visited set.
func (s *Scheduler) reachable(start, target string) bool {
	visited := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == target {
			return true
		}
		if visited[id] {
			continue
		}
		visited[id] = true
		if task, ok := s.tasks[id]; ok {
			stack = append(stack, task.DependsOn...)
		}
	}
	return false
}

func (s *Scheduler) depsCompleted(task *core.Task) bool {
	for _, dep := range task.DependsOn {
		prereq, ok := s.tasks[dep]
		if !ok || prereq.Status != core.StatusCompleted {
			return false
		}
	}
	return true
}

func (s *Scheduler) emit(action events.TaskAction, task *core.Task) {
	s.bus.Publish(events.TaskEvent{
		Action:    action,
		Task:      *snapshot(task),
		Timestamp: time.Now().UTC(),
	})
}

// persist submits an asynchronous write-through of the task snapshot. The
// single-worker pool preserves mutation order; failures are logged only.
func (s *Scheduler) persist(task *core.Task) {
	record := snapshot(task)
	err := s.pool.Submit(func() {
		if err := s.repo.UpsertTask(context.Background(), record); err != nil {
			s.logger.Error("error persisting task", "taskId", record.Id, "err", err)
		}
	})
	if err != nil {
		s.logger.Error("error submitting task persistence", "taskId", record.Id, "err", err)
	}
}

// snapshot copies a task so callers and async writers never alias the
// scheduler's own record.
func snapshot(task *core.Task) *core.Task {
	copied := *task
	copied.DependsOn = slices.Clone(task.DependsOn)
	copied.Tags = slices.Clone(task.Tags)
	if task.Metadata != nil {
		copied.Metadata = make(map[string]string, len(task.Metadata))
		for k, v := range task.Metadata {
			copied.Metadata[k] = v
		}
	}
	if task.CompletedAt != nil {
		completed := *task.CompletedAt
		copied.CompletedAt = &completed
	}
	return &copied
}
