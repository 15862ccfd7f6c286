package planner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/events"
	"github.com/poiesic/metasearch/provider"
	"github.com/poiesic/metasearch/scheduler"
	"github.com/poiesic/metasearch/storage"
)

const (
	// exploratoryResults caps each exploratory provider call during strategy
	// formulation.
	exploratoryResults = 5

	// maxSubQueries caps query decomposition.
	maxSubQueries = 2

	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
	defaultSearchTimeout = 10 * time.Second
)

// resultsPerProvider is the per-provider result budget allocated to each
// strategy during resource allocation.
var resultsPerProvider = map[core.SearchStrategy]int{
	core.StrategyStandard:     5,
	core.StrategyBalanced:     8,
	core.StrategyAcademic:     10,
	core.StrategyTechnical:    8,
	core.StrategyRecentEvents: 8,
	core.StrategyDeepResearch: 10,
}

// Planner drives a session's planning stage machine: requirements analysis,
// query decomposition, strategy formulation by exploratory-search analysis,
// and resource allocation. Like the scheduler, it is owned by one session
// and confined to its goroutine; state persists after every mutation and
// store errors never roll back memory.
type Planner struct {
	sessionId string
	ownerId   string

	scheduler *scheduler.Scheduler
	repo      storage.PlanningRepository
	bus       *events.Bus
	providers []provider.SearchProvider
	logger    *slog.Logger

	retryAttempts int
	retryDelay    time.Duration
	searchTimeout time.Duration

	state          *core.PlanningState
	reviewOverride *bool
	taskIds        map[string]string
}

// Option configures a Planner.
type Option func(*Planner) error

// WithProviders sets the providers used for exploratory searches.
// Without providers the analyzers see empty batches and scoring falls back
// to the enumeration-order default.
func WithProviders(providers ...provider.SearchProvider) Option {
	return func(p *Planner) error {
		p.providers = providers
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithRetry overrides the exploratory-search retry budget.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(p *Planner) error {
		p.retryAttempts = attempts
		p.retryDelay = baseDelay
		return nil
	}
}

// New creates a planner for one session.
func New(sessionId, ownerId string, sched *scheduler.Scheduler, repo storage.PlanningRepository, bus *events.Bus, opts ...Option) (*Planner, error) {
	if sched == nil {
		return nil, ErrSchedulerRequired
	}
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if bus == nil {
		return nil, ErrBusRequired
	}

	p := &Planner{
		sessionId:     sessionId,
		ownerId:       ownerId,
		scheduler:     sched,
		repo:          repo,
		bus:           bus,
		logger:        slog.Default(),
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
		searchTimeout: defaultSearchTimeout,
		taskIds:       make(map[string]string),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// State returns a copy of the current planning state, or a zero state before
// StartPlanning.
func (p *Planner) State() core.PlanningState {
	if p.state == nil {
		return core.PlanningState{SessionId: p.sessionId, OwnerId: p.ownerId}
	}
	return *p.state
}

// StartPlanning resets the session to the initial stage, creates the three
// planning tasks, and advances to requirements analysis. Any prior planning
// result for this session is discarded.
func (p *Planner) StartPlanning(ctx context.Context, query string) error {
	p.state = &core.PlanningState{
		SessionId: p.sessionId,
		OwnerId:   p.ownerId,
		Stage:     core.StageInitial,
		UpdatedAt: time.Now().UTC(),
	}
	if p.reviewOverride != nil {
		review := *p.reviewOverride
		p.state.Result.HumanReview = &review
	}
	p.taskIds = make(map[string]string)
	p.save()
	p.emitStage()

	titles := []string{"analyze requirements", "decompose query", "formulate strategy"}
	var previousId string
	for _, title := range titles {
		input := scheduler.CreateTaskInput{
			Title:       title,
			Description: fmt.Sprintf("%s for query %q", title, query),
			Priority:    core.PriorityHigh,
		}
		if previousId != "" {
			input.DependsOn = []string{previousId}
		}
		task, err := p.scheduler.CreateTask(ctx, input)
		if err != nil {
			return fmt.Errorf("creating planning task %q: %w", title, err)
		}
		p.taskIds[title] = task.Id
		previousId = task.Id
	}

	return p.SetStage(core.StageRequirementsAnalysis)
}

// SetStage moves the session to the given stage, persists it, and emits a
// stage-changed event. It does not validate ordering; callers sequence the
// stages themselves.
func (p *Planner) SetStage(stage core.PlanningStage) error {
	if p.state == nil {
		return ErrPlanningNotStarted
	}
	if err := core.ValidateStage(stage); err != nil {
		return err
	}

	p.state.Stage = stage
	p.state.UpdatedAt = time.Now().UTC()
	p.save()
	p.emitStage()
	return nil
}

// ResultUpdate is a partial update to the accumulated planning result.
// Nil and zero fields are left unchanged.
type ResultUpdate struct {
	Strategy           core.SearchStrategy
	EnhancedQuery      string
	SubQueries         []string
	ResourceAllocation map[string]int
	HumanReview        *bool
}

// UpdateResult merges the update into the accumulated result and persists.
func (p *Planner) UpdateResult(update ResultUpdate) error {
	if p.state == nil {
		return ErrPlanningNotStarted
	}

	if update.Strategy != "" {
		p.state.Result.Strategy = update.Strategy
	}
	if update.EnhancedQuery != "" {
		p.state.Result.EnhancedQuery = update.EnhancedQuery
	}
	if update.SubQueries != nil {
		p.state.Result.SubQueries = append([]string(nil), update.SubQueries...)
	}
	if update.ResourceAllocation != nil {
		p.state.Result.ResourceAllocation = update.ResourceAllocation
	}
	if update.HumanReview != nil {
		review := *update.HumanReview
		p.state.Result.HumanReview = &review
	}

	p.state.UpdatedAt = time.Now().UTC()
	p.save()
	return nil
}

// SetHumanReview overrides whether the workflow includes a human-review
// step. The override survives StartPlanning resets; before planning starts
// it is simply remembered and applied to the next cycle.
func (p *Planner) SetHumanReview(enabled bool) error {
	p.reviewOverride = &enabled
	if p.state == nil {
		return nil
	}
	return p.UpdateResult(ResultUpdate{HumanReview: &enabled})
}

// CompletePlanning validates the accumulated result, marks the session
// ready, and emits the completion event. An incomplete result leaves the
// state untouched.
func (p *Planner) CompletePlanning() error {
	if p.state == nil {
		return ErrPlanningNotStarted
	}
	if p.state.Result.Strategy == "" || p.state.Result.EnhancedQuery == "" {
		return fmt.Errorf("%w: strategy and enhanced query are required", core.ErrIncompletePlan)
	}

	p.state.SelectedStrategy = p.state.Result.Strategy
	p.state.Stage = core.StageReady
	p.state.UpdatedAt = time.Now().UTC()
	p.save()
	p.emitStage()

	p.bus.Publish(events.PlanEvent{
		SessionId: p.sessionId,
		Strategy:  p.state.SelectedStrategy,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Load restores the persisted planning state for this session, if any.
func (p *Planner) Load(ctx context.Context) error {
	state, err := p.repo.GetPlanningState(ctx, p.sessionId, p.ownerId)
	if err != nil {
		return fmt.Errorf("loading planning state: %w", err)
	}
	if state != nil {
		p.state = state
	}
	return nil
}

// Workflow returns the workflow configuration for the selected strategy,
// applying the session's human-review override.
func (p *Planner) Workflow() WorkflowConfig {
	if p.state == nil {
		return WorkflowForStrategy(core.StrategyStandard, nil)
	}
	strategy := p.state.SelectedStrategy
	if strategy == "" {
		strategy = p.state.Result.Strategy
	}
	return WorkflowForStrategy(strategy, p.state.Result.HumanReview)
}

// Plan runs the whole planning flow for a query: start, decompose, formulate
// a strategy from exploratory searches, allocate resources, and complete.
// Each planning task is completed as its stage finishes. Provider failures
// during exploration are logged and treated as no signal.
func (p *Planner) Plan(ctx context.Context, query string) (core.PlanningState, error) {
	if err := p.StartPlanning(ctx, query); err != nil {
		return core.PlanningState{}, err
	}
	p.completeTask(ctx, "analyze requirements")

	if err := p.SetStage(core.StageTaskDecomposition); err != nil {
		return core.PlanningState{}, err
	}
	if err := p.UpdateResult(ResultUpdate{SubQueries: deriveSubQueries(query)}); err != nil {
		return core.PlanningState{}, err
	}
	p.completeTask(ctx, "decompose query")

	if err := p.SetStage(core.StageStrategyFormulation); err != nil {
		return core.PlanningState{}, err
	}
	strategy := p.formulateStrategy(ctx, query)
	if err := p.UpdateResult(ResultUpdate{
		Strategy:      strategy,
		EnhancedQuery: enhanceQuery(query, strategy),
	}); err != nil {
		return core.PlanningState{}, err
	}
	p.completeTask(ctx, "formulate strategy")

	if err := p.SetStage(core.StageResourceAllocation); err != nil {
		return core.PlanningState{}, err
	}
	if err := p.UpdateResult(ResultUpdate{ResourceAllocation: p.allocateResources(strategy)}); err != nil {
		return core.PlanningState{}, err
	}

	if err := p.CompletePlanning(); err != nil {
		return core.PlanningState{}, err
	}
	return *p.state, nil
}

// formulateStrategy runs one exploratory search per provider and feeds each
// batch through every analyzer, then picks the highest-scored strategy.
func (p *Planner) formulateStrategy(ctx context.Context, query string) core.SearchStrategy {
	scores := core.NewStrategyScores()

	for _, searchProvider := range p.providers {
		batch := p.exploratorySearch(ctx, searchProvider, query)
		if len(batch) == 0 {
			continue
		}
		for _, analyze := range analyzers {
			analyze(batch, scores)
		}
	}

	strategy := scores.Best()
	p.logger.Debug("strategy formulated",
		"session_id", p.sessionId,
		"strategy", strategy,
		"score", scores.Score(strategy))
	return strategy
}

// exploratorySearch runs one bounded, retried provider call. Any failure is
// logged and returns an empty batch.
func (p *Planner) exploratorySearch(ctx context.Context, searchProvider provider.SearchProvider, query string) []core.SearchResult {
	var batch []core.SearchResult
	operation := func() error {
		results, err := searchProvider.Search(ctx, query, provider.SearchOptions{
			MaxResults: exploratoryResults,
			Timeout:    p.searchTimeout,
		})
		if err != nil {
			return err
		}
		batch = results
		return nil
	}

	err := provider.RetryWithBackoff(ctx, operation, p.retryAttempts, p.retryDelay)
	if err != nil {
		p.logger.Warn("exploratory search failed, no signal",
			"provider", searchProvider.Name(),
			"error", err)
		return nil
	}
	return batch
}

func (p *Planner) allocateResources(strategy core.SearchStrategy) map[string]int {
	budget, ok := resultsPerProvider[strategy]
	if !ok {
		budget = resultsPerProvider[core.StrategyStandard]
	}

	allocation := make(map[string]int, len(p.providers))
	for _, searchProvider := range p.providers {
		allocation[searchProvider.Name()] = budget
	}
	return allocation
}

// deriveSubQueries decomposes the query into up to two focused variants that
// the session fans out alongside the primary query.
func deriveSubQueries(query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	subQueries := []string{
		query + " explained",
		query + " comparison",
	}
	if len(subQueries) > maxSubQueries {
		subQueries = subQueries[:maxSubQueries]
	}
	return subQueries
}

// enhanceQuery biases the query toward the selected strategy's sources.
func enhanceQuery(query string, strategy core.SearchStrategy) string {
	switch strategy {
	case core.StrategyAcademic:
		return query + " research paper"
	case core.StrategyTechnical:
		return query + " documentation"
	case core.StrategyRecentEvents:
		return query + " latest news"
	case core.StrategyDeepResearch:
		return query + " in-depth analysis"
	default:
		return query
	}
}

// completeTask marks one planning task completed, logging rather than
// failing when the transition is rejected.
func (p *Planner) completeTask(ctx context.Context, title string) {
	id, ok := p.taskIds[title]
	if !ok {
		return
	}
	status := core.StatusCompleted
	if _, err := p.scheduler.UpdateTask(ctx, id, scheduler.TaskUpdate{Status: &status}); err != nil {
		p.logger.Warn("completing planning task failed", "task", title, "error", err)
	}
}

// save writes the planning state through synchronously. Store errors are
// logged and never roll back the in-memory state.
func (p *Planner) save() {
	if err := p.repo.SavePlanningState(context.Background(), p.state); err != nil {
		p.logger.Error("persisting planning state failed",
			"session_id", p.sessionId,
			"error", err)
	}
}

func (p *Planner) emitStage() {
	p.bus.Publish(events.StageEvent{
		SessionId: p.sessionId,
		Stage:     p.state.Stage,
		Timestamp: time.Now().UTC(),
	})
}
