package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/events"
	"github.com/poiesic/metasearch/provider"
	"github.com/poiesic/metasearch/provider/mock"
	"github.com/poiesic/metasearch/scheduler"
	"github.com/poiesic/metasearch/storage"
	"github.com/poiesic/metasearch/storage/badger"
)

type plannerFixture struct {
	planner   *Planner
	scheduler *scheduler.Scheduler
	repo      storage.PlanningRepository
	bus       *events.Bus
	events    <-chan events.Event
}

func newTestPlanner(t *testing.T, opts ...Option) *plannerFixture {
	t.Helper()

	taskRepo, planningRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	sched, err := scheduler.New("session-1", "owner-1", taskRepo, bus)
	require.NoError(t, err)
	t.Cleanup(sched.Release)

	sub := bus.Subscribe(64)

	opts = append([]Option{WithRetry(1, time.Millisecond)}, opts...)
	p, err := New("session-1", "owner-1", sched, planningRepo, bus, opts...)
	require.NoError(t, err)

	return &plannerFixture{planner: p, scheduler: sched, repo: planningRepo, bus: bus, events: sub}
}

func (f *plannerFixture) drainStages(t *testing.T) []core.PlanningStage {
	t.Helper()
	var stages []core.PlanningStage
	for {
		select {
		case event := <-f.events:
			if stage, ok := event.(events.StageEvent); ok {
				stages = append(stages, stage.Stage)
			}
		case <-time.After(100 * time.Millisecond):
			return stages
		}
	}
}

func TestNewValidation(t *testing.T) {
	taskRepo, planningRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	bus := events.NewBus()
	defer bus.Close()

	sched, err := scheduler.New("s", "o", taskRepo, bus)
	require.NoError(t, err)
	defer sched.Release()

	_, err = New("s", "o", nil, planningRepo, bus)
	assert.ErrorIs(t, err, ErrSchedulerRequired)

	_, err = New("s", "o", sched, nil, bus)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = New("s", "o", sched, planningRepo, nil)
	assert.ErrorIs(t, err, ErrBusRequired)
}

func TestStartPlanning(t *testing.T) {
	f := newTestPlanner(t)

	err := f.planner.StartPlanning(context.Background(), "quantum error correction")
	require.NoError(t, err)

	state := f.planner.State()
	assert.Equal(t, core.StageRequirementsAnalysis, state.Stage)

	tasks := f.scheduler.Tasks()
	require.Len(t, tasks, 3)
	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"analyze requirements", "decompose query", "formulate strategy"}, titles)

	// Planning tasks are chained, so only the first is runnable.
	next := f.scheduler.GetNextTask()
	require.NotNil(t, next)
	assert.Equal(t, "analyze requirements", next.Title)

	stages := f.drainStages(t)
	assert.Equal(t, []core.PlanningStage{core.StageInitial, core.StageRequirementsAnalysis}, stages)
}

func TestSetStageBeforeStart(t *testing.T) {
	f := newTestPlanner(t)
	assert.ErrorIs(t, f.planner.SetStage(core.StageReady), ErrPlanningNotStarted)
	assert.ErrorIs(t, f.planner.CompletePlanning(), ErrPlanningNotStarted)
}

func TestSetStageRejectsUnknown(t *testing.T) {
	f := newTestPlanner(t)
	require.NoError(t, f.planner.StartPlanning(context.Background(), "q"))

	err := f.planner.SetStage(core.PlanningStage("warp_drive"))
	assert.ErrorIs(t, err, core.ErrInvalidStage)
	assert.Equal(t, core.StageRequirementsAnalysis, f.planner.State().Stage)
}

func TestCompletePlanningRequiresResult(t *testing.T) {
	f := newTestPlanner(t)
	require.NoError(t, f.planner.StartPlanning(context.Background(), "q"))

	err := f.planner.CompletePlanning()
	assert.ErrorIs(t, err, core.ErrIncompletePlan)
	assert.Equal(t, core.StageRequirementsAnalysis, f.planner.State().Stage)

	require.NoError(t, f.planner.UpdateResult(ResultUpdate{Strategy: core.StrategyBalanced}))
	err = f.planner.CompletePlanning()
	assert.ErrorIs(t, err, core.ErrIncompletePlan)

	require.NoError(t, f.planner.UpdateResult(ResultUpdate{EnhancedQuery: "q expanded"}))
	require.NoError(t, f.planner.CompletePlanning())

	state := f.planner.State()
	assert.Equal(t, core.StageReady, state.Stage)
	assert.Equal(t, core.StrategyBalanced, state.SelectedStrategy)
}

func TestPlanWithAcademicSignals(t *testing.T) {
	results := []core.SearchResult{
		{URL: "https://physics.mit.edu/research/paper1", Title: "Research analysis of decoherence theory"},
		{URL: "https://nist.gov/quantum/report", Title: "Comprehensive survey of error correction research"},
		{URL: "https://arxiv.example.edu/abs/1234", Title: "In-depth theoretical comparison of stabilizer codes"},
	}
	searchProvider := mock.NewMockSearchProvider("alpha", results)

	f := newTestPlanner(t, WithProviders(searchProvider))

	state, err := f.planner.Plan(context.Background(), "quantum error correction")
	require.NoError(t, err)

	assert.Equal(t, core.StageReady, state.Stage)
	assert.Equal(t, core.StrategyAcademic, state.SelectedStrategy)
	assert.Equal(t, "quantum error correction research paper", state.Result.EnhancedQuery)
	assert.Len(t, state.Result.SubQueries, 2)
	assert.Equal(t, 10, state.Result.ResourceAllocation["alpha"])
	assert.GreaterOrEqual(t, searchProvider.CallCount(), 1)

	// The planning tasks were all driven to completion.
	for _, task := range f.scheduler.Tasks() {
		assert.Equal(t, core.StatusCompleted, task.Status, task.Title)
	}
}

func TestPlanProviderFailureFallsBackToStandard(t *testing.T) {
	failing := mock.NewMockSearchProvider("broken", nil)
	failing.SearchFunc = func(ctx context.Context, query string, opts provider.SearchOptions) ([]core.SearchResult, error) {
		return nil, errors.New("upstream unavailable")
	}

	f := newTestPlanner(t, WithProviders(failing))

	state, err := f.planner.Plan(context.Background(), "anything at all")
	require.NoError(t, err)
	assert.Equal(t, core.StrategyStandard, state.SelectedStrategy)
}

func TestLoadRestoresState(t *testing.T) {
	f := newTestPlanner(t)
	require.NoError(t, f.planner.StartPlanning(context.Background(), "q"))
	require.NoError(t, f.planner.UpdateResult(ResultUpdate{Strategy: core.StrategyTechnical, EnhancedQuery: "q docs"}))
	require.NoError(t, f.planner.CompletePlanning())

	restored, err := New("session-1", "owner-1", f.scheduler, f.repo, f.bus)
	require.NoError(t, err)
	require.NoError(t, restored.Load(context.Background()))

	state := restored.State()
	assert.Equal(t, core.StageReady, state.Stage)
	assert.Equal(t, core.StrategyTechnical, state.SelectedStrategy)
}
