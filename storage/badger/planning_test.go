package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/metasearch/core"
)

func TestPlanningStateRoundTrip(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()
	review := true

	state := &core.PlanningState{
		SessionId: "s1",
		OwnerId:   "u1",
		Stage:     core.StageStrategyFormulation,
		Result: core.PlanningResult{
			Strategy:           core.StrategyAcademic,
			EnhancedQuery:      "peer reviewed studies on sleep deprivation",
			SubQueries:         []string{"sleep deprivation cognition", "sleep deprivation memory"},
			ResourceAllocation: map[string]int{"academic": 3, "web": 1},
			HumanReview:        &review,
		},
		SelectedStrategy: core.StrategyAcademic,
		UpdatedAt:        time.Now().UTC(),
	}

	if err := planningRepo.SavePlanningState(ctx, state); err != nil {
		t.Fatalf("Failed to save planning state: %v", err)
	}

	got, err := planningRepo.GetPlanningState(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("Failed to load planning state: %v", err)
	}
	if got == nil {
		t.Fatal("Expected planning state, got nil")
	}
	if got.Stage != core.StageStrategyFormulation {
		t.Fatalf("Expected stage %q, got %q", core.StageStrategyFormulation, got.Stage)
	}
	if got.SelectedStrategy != core.StrategyAcademic {
		t.Fatalf("Expected strategy %q, got %q", core.StrategyAcademic, got.SelectedStrategy)
	}
	if got.Result.EnhancedQuery != state.Result.EnhancedQuery {
		t.Fatalf("Expected enhanced query to survive round-trip, got %q", got.Result.EnhancedQuery)
	}
	if len(got.Result.SubQueries) != 2 {
		t.Fatalf("Expected 2 sub-queries, got %d", len(got.Result.SubQueries))
	}
	if got.Result.ResourceAllocation["academic"] != 3 {
		t.Fatalf("Expected resource allocation to survive round-trip, got %v", got.Result.ResourceAllocation)
	}
	if got.Result.HumanReview == nil || !*got.Result.HumanReview {
		t.Fatal("Expected human review flag to survive round-trip")
	}
}

func TestGetPlanningState_Absent(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	got, err := planningRepo.GetPlanningState(context.Background(), "s1", "u1")
	if err != nil {
		t.Fatalf("Absent record should not be an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("Expected nil state, got %+v", got)
	}
}

func TestSavePlanningState_Overwrites(t *testing.T) {
	taskRepo, planningRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { planningRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()
	state := &core.PlanningState{SessionId: "s1", OwnerId: "u1", Stage: core.StageInitial}

	if err := planningRepo.SavePlanningState(ctx, state); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	state.Stage = core.StageReady
	if err := planningRepo.SavePlanningState(ctx, state); err != nil {
		t.Fatalf("Failed to overwrite: %v", err)
	}

	got, err := planningRepo.GetPlanningState(ctx, "s1", "u1")
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got.Stage != core.StageReady {
		t.Fatalf("Expected stage %q, got %q", core.StageReady, got.Stage)
	}
}
