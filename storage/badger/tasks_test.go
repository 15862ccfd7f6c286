package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/storage"
)

func TestTaskUpsertAndGet(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	task := &core.Task{
		Id:        "t1",
		SessionId: "s1",
		OwnerId:   "u1",
		Title:     "analyze requirements",
		Priority:  core.PriorityHigh,
		Status:    core.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]string{"phase": "planning"},
	}

	if err := taskRepo.UpsertTask(ctx, task); err != nil {
		t.Fatalf("Failed to upsert task: %v", err)
	}

	got, err := taskRepo.GetTask(ctx, "s1", "t1")
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if got.Title != "analyze requirements" {
		t.Fatalf("Expected 'analyze requirements', got %q", got.Title)
	}
	if got.Metadata["phase"] != "planning" {
		t.Fatalf("Expected metadata to survive round-trip, got %v", got.Metadata)
	}

	// Upsert replaces the record
	task.Status = core.StatusCompleted
	completed := now.Add(time.Minute)
	task.CompletedAt = &completed
	if err := taskRepo.UpsertTask(ctx, task); err != nil {
		t.Fatalf("Failed to upsert updated task: %v", err)
	}

	got, err = taskRepo.GetTask(ctx, "s1", "t1")
	if err != nil {
		t.Fatalf("Failed to get updated task: %v", err)
	}
	if got.Status != core.StatusCompleted {
		t.Fatalf("Expected completed status, got %q", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("Expected CompletedAt to be set")
	}
}

func TestGetTask_NotFound(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	_, err = taskRepo.GetTask(context.Background(), "s1", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetSessionTasks(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()
	base := time.Now().UTC()

	// Insert out of creation order to verify ordering on read
	for i, spec := range []struct {
		id     string
		offset time.Duration
	}{
		{"t3", 2 * time.Second},
		{"t1", 0},
		{"t2", time.Second},
	} {
		task := &core.Task{
			Id:        spec.id,
			SessionId: "s1",
			OwnerId:   "u1",
			Title:     "task",
			Priority:  core.PriorityMedium,
			Status:    core.StatusPending,
			CreatedAt: base.Add(spec.offset),
			UpdatedAt: base.Add(spec.offset),
		}
		if err := taskRepo.UpsertTask(ctx, task); err != nil {
			t.Fatalf("Failed to upsert task %d: %v", i, err)
		}
	}

	// A task from another session and another owner must not leak in
	other := &core.Task{
		Id: "x1", SessionId: "s2", OwnerId: "u1", Title: "other",
		Priority: core.PriorityLow, Status: core.StatusPending, CreatedAt: base,
	}
	if err := taskRepo.UpsertTask(ctx, other); err != nil {
		t.Fatalf("Failed to upsert other-session task: %v", err)
	}
	foreign := &core.Task{
		Id: "x2", SessionId: "s1", OwnerId: "u2", Title: "foreign",
		Priority: core.PriorityLow, Status: core.StatusPending, CreatedAt: base,
	}
	if err := taskRepo.UpsertTask(ctx, foreign); err != nil {
		t.Fatalf("Failed to upsert foreign-owner task: %v", err)
	}

	tasks, err := taskRepo.GetSessionTasks(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("Failed to get session tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("Expected 3 tasks, got %d", len(tasks))
	}
	for i, wantId := range []string{"t1", "t2", "t3"} {
		if tasks[i].Id != wantId {
			t.Fatalf("Expected task %d to be %q, got %q", i, wantId, tasks[i].Id)
		}
	}
}

func TestGetSessionTasks_UnknownSession(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	tasks, err := taskRepo.GetSessionTasks(context.Background(), "nope", "u1")
	if err != nil {
		t.Fatalf("Unknown session should not be an error, got %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("Expected empty slice, got %d tasks", len(tasks))
	}
}
