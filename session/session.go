package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/metasearch/aggregate"
	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/events"
	"github.com/poiesic/metasearch/planner"
	"github.com/poiesic/metasearch/provider"
	"github.com/poiesic/metasearch/scheduler"
	"github.com/poiesic/metasearch/storage"
	"github.com/poiesic/metasearch/stream"
)

const (
	// defaultAllocation is the per-provider result budget when planning did
	// not allocate one.
	defaultAllocation = 5

	// maxReadResults caps how many top results the read step walks.
	maxReadResults = 5

	defaultSearchTimeout = 15 * time.Second
)

// Session drives one search from planning to completion for a
// (sessionId, ownerId) pair. It owns the event bus and the scheduler,
// planner, and aggregator wired to it. Sessions share no mutable state with
// each other; all mutations go through the session's own methods in call
// order.
type Session struct {
	sessionId string
	ownerId   string

	bus        *events.Bus
	scheduler  *scheduler.Scheduler
	planner    *planner.Planner
	aggregator *aggregate.Aggregator
	providers  []provider.SearchProvider
	pool       *ants.Pool
	writer     *stream.ThrottledWriter
	logger     *slog.Logger

	reviewFunc    func(ctx context.Context, results []core.SearchResult) error
	searchTimeout time.Duration
	normalizerWg  sync.WaitGroup
	closeOnce     sync.Once
}

// Option configures a Session.
type Option func(*config) error

type config struct {
	providers       []provider.SearchProvider
	reranker        provider.Reranker
	sink            io.Writer
	writeInterval   time.Duration
	logger          *slog.Logger
	reviewFunc      func(ctx context.Context, results []core.SearchResult) error
	aggregateConfig *aggregate.Config
	searchTimeout   time.Duration
	retryAttempts   int
	retryDelay      time.Duration
}

// WithProviders sets the search providers the session fans out to.
func WithProviders(providers ...provider.SearchProvider) Option {
	return func(c *config) error {
		c.providers = providers
		return nil
	}
}

// WithReranker sets the relevance reranker used during aggregation.
func WithReranker(reranker provider.Reranker) Option {
	return func(c *config) error {
		c.reranker = reranker
		return nil
	}
}

// WithSink attaches a client update sink. Session events are normalized and
// written to it as JSON lines, throttled. Without a sink the session runs
// silently.
func WithSink(sink io.Writer) Option {
	return func(c *config) error {
		c.sink = sink
		return nil
	}
}

// WithWriteInterval overrides the sink throttle interval.
func WithWriteInterval(interval time.Duration) Option {
	return func(c *config) error {
		c.writeInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithReviewFunc installs the callback invoked while the workflow is
// suspended on the human-review step. A nil callback means review
// suspensions are announced and then resumed immediately.
func WithReviewFunc(fn func(ctx context.Context, results []core.SearchResult) error) Option {
	return func(c *config) error {
		c.reviewFunc = fn
		return nil
	}
}

// WithAggregateConfig overrides the aggregation thresholds.
func WithAggregateConfig(cfg aggregate.Config) Option {
	return func(c *config) error {
		c.aggregateConfig = &cfg
		return nil
	}
}

// WithSearchTimeout bounds each provider call.
func WithSearchTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		c.searchTimeout = timeout
		return nil
	}
}

// WithRetry overrides the retry budget for exploratory searches during
// planning.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *config) error {
		c.retryAttempts = attempts
		c.retryDelay = baseDelay
		return nil
	}
}

// New creates a session over the given repositories. The session owns its
// event bus and worker pool; call Close when done.
func New(sessionId, ownerId string, taskRepo storage.TaskRepository, planningRepo storage.PlanningRepository, opts ...Option) (*Session, error) {
	cfg := &config{
		writeInterval: stream.DefaultWriteInterval,
		logger:        slog.Default(),
		searchTimeout: defaultSearchTimeout,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	bus := events.NewBus(events.WithBusLogger(cfg.logger))

	sched, err := scheduler.New(sessionId, ownerId, taskRepo, bus, scheduler.WithLogger(cfg.logger))
	if err != nil {
		bus.Close()
		return nil, err
	}

	plannerOpts := []planner.Option{
		planner.WithProviders(cfg.providers...),
		planner.WithLogger(cfg.logger),
	}
	if cfg.retryAttempts > 0 {
		plannerOpts = append(plannerOpts, planner.WithRetry(cfg.retryAttempts, cfg.retryDelay))
	}
	plan, err := planner.New(sessionId, ownerId, sched, planningRepo, bus, plannerOpts...)
	if err != nil {
		sched.Release()
		bus.Close()
		return nil, err
	}

	aggregateOpts := []aggregate.Option{aggregate.WithLogger(cfg.logger)}
	if cfg.reranker != nil {
		aggregateOpts = append(aggregateOpts, aggregate.WithReranker(cfg.reranker))
	}
	if cfg.aggregateConfig != nil {
		aggregateOpts = append(aggregateOpts, aggregate.WithConfig(*cfg.aggregateConfig))
	}
	aggregator, err := aggregate.New(aggregateOpts...)
	if err != nil {
		sched.Release()
		bus.Close()
		return nil, err
	}

	poolSize := len(cfg.providers) * 3
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		sched.Release()
		bus.Close()
		return nil, fmt.Errorf("creating search pool: %w", err)
	}

	s := &Session{
		sessionId:     sessionId,
		ownerId:       ownerId,
		bus:           bus,
		scheduler:     sched,
		planner:       plan,
		aggregator:    aggregator,
		providers:     cfg.providers,
		pool:          pool,
		logger:        cfg.logger,
		reviewFunc:    cfg.reviewFunc,
		searchTimeout: cfg.searchTimeout,
	}

	if cfg.sink != nil {
		s.writer = stream.NewThrottledWriter(cfg.sink,
			stream.WithInterval(cfg.writeInterval),
			stream.WithWriterLogger(cfg.logger))
		sub := bus.Subscribe(256)
		normalizer := stream.NewNormalizer(s.writer, stream.WithNormalizerLogger(cfg.logger))
		s.normalizerWg.Add(1)
		go func() {
			defer s.normalizerWg.Done()
			normalizer.Run(context.Background(), sub)
		}()
	}

	return s, nil
}

// Outcome is the final product of one session run.
type Outcome struct {
	Query         string              `json:"query"`
	EnhancedQuery string              `json:"enhanced_query"`
	Strategy      core.SearchStrategy `json:"strategy"`
	Results       []core.SearchResult `json:"results"`
	Stats         aggregate.Stats     `json:"stats"`
	Summary       string              `json:"summary"`
}

// Run executes the full workflow for a query: planning, concurrent provider
// search, aggregation, optional human review, and synthesis. Provider
// failures degrade the result; only planning errors abort the run.
func (s *Session) Run(ctx context.Context, query string) (*Outcome, error) {
	s.bus.Publish(events.WorkflowEvent{
		Status:    events.WorkflowStarted,
		Payload:   events.StepPayload{Query: query},
		Timestamp: time.Now().UTC(),
	})

	s.emitStep(planner.StepPlanning, events.StepStarted, events.StepPayload{Query: query}, "")
	state, err := s.planner.Plan(ctx, query)
	if err != nil {
		s.emitStep(planner.StepPlanning, events.StepFailed, events.StepPayload{Query: query}, err.Error())
		s.bus.Publish(events.WorkflowEvent{Status: events.WorkflowFailed, Timestamp: time.Now().UTC()})
		return nil, fmt.Errorf("planning failed: %w", err)
	}
	s.emitStep(planner.StepPlanning, events.StepCompleted, events.StepPayload{Query: query}, "")

	workflow := s.planner.Workflow()
	outcome := &Outcome{
		Query:         query,
		EnhancedQuery: state.Result.EnhancedQuery,
		Strategy:      state.SelectedStrategy,
	}

	var batches []aggregate.Batch
	for _, step := range workflow.Steps {
		switch step {
		case planner.StepPlanning:
			// Already executed above.

		case planner.StepSearch:
			batches = s.searchAll(ctx, state)

		case planner.StepRead:
			s.readResults(batches)

		case planner.StepAggregate:
			s.emitStep(planner.StepAggregate, events.StepStarted, events.StepPayload{}, "")
			outcome.Results, outcome.Stats = s.aggregator.Aggregate(ctx, batches, state.Result.EnhancedQuery)
			s.emitStep(planner.StepAggregate, events.StepCompleted,
				events.StepPayload{ResultCount: len(outcome.Results)}, "")

			s.bus.Publish(events.BranchEvent{
				BranchId:  "has_results",
				Condition: "result_count > 0",
				Selected:  len(outcome.Results) > 0,
				Timestamp: time.Now().UTC(),
			})

		case planner.StepHumanReview:
			if err := s.awaitReview(ctx, outcome.Results); err != nil {
				s.bus.Publish(events.WorkflowEvent{Status: events.WorkflowFailed, Timestamp: time.Now().UTC()})
				return nil, err
			}

		case planner.StepSynthesize:
			s.emitStep(planner.StepSynthesize, events.StepStarted, events.StepPayload{}, "")
			outcome.Summary = synthesize(outcome)
			s.emitStep(planner.StepSynthesize, events.StepCompleted,
				events.StepPayload{Message: outcome.Summary}, "")

		case planner.StepComplete:
			s.emitStep(planner.StepComplete, events.StepCompleted,
				events.StepPayload{ResultCount: len(outcome.Results)}, "")
			s.bus.Publish(events.WorkflowEvent{Status: events.WorkflowCompleted, Timestamp: time.Now().UTC()})

		default:
			s.logger.Warn("skipping unknown workflow step", "step", step)
		}
	}

	return outcome, nil
}

// Resume restores persisted tasks and planning state for this session.
func (s *Session) Resume(ctx context.Context) error {
	if err := s.scheduler.LoadSession(ctx); err != nil {
		return fmt.Errorf("restoring tasks: %w", err)
	}
	if err := s.planner.Load(ctx); err != nil {
		return err
	}
	return nil
}

// Scheduler exposes the session's task scheduler.
func (s *Session) Scheduler() *scheduler.Scheduler {
	return s.scheduler
}

// Planner exposes the session's strategy planner.
func (s *Session) Planner() *planner.Planner {
	return s.planner
}

// Close releases the session's bus, pools, and sink. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.scheduler.Release()
		s.pool.Release()
		s.bus.Close()
		s.normalizerWg.Wait()
		if s.writer != nil {
			s.writer.Close()
		}
	})
}

// readResults walks the top raw results emitting progress, standing in for
// content fetch in strategies that include a read phase.
func (s *Session) readResults(batches []aggregate.Batch) {
	total := 0
	for _, batch := range batches {
		total += len(batch.Results)
	}
	if total > maxReadResults {
		total = maxReadResults
	}

	s.emitStep(planner.StepRead, events.StepStarted, events.StepPayload{ResultCount: total}, "")
	for i := 0; i < total; i++ {
		s.bus.Publish(events.ProgressEvent{
			StepId:    planner.StepRead,
			Current:   i + 1,
			Total:     total,
			Timestamp: time.Now().UTC(),
		})
	}
	s.emitStep(planner.StepRead, events.StepCompleted, events.StepPayload{ResultCount: total}, "")
}

// awaitReview suspends the workflow on the human-review step, invokes the
// review callback when one is configured, and resumes.
func (s *Session) awaitReview(ctx context.Context, results []core.SearchResult) error {
	s.bus.Publish(events.WorkflowEvent{
		Status:        events.WorkflowSuspended,
		SuspendedStep: planner.StepHumanReview,
		Payload:       events.StepPayload{ResultCount: len(results)},
		Timestamp:     time.Now().UTC(),
	})

	if s.reviewFunc != nil {
		if err := s.reviewFunc(ctx, results); err != nil {
			return fmt.Errorf("human review rejected: %w", err)
		}
	}

	s.bus.Publish(events.CustomEvent{
		Name:      "user_input_received",
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Session) emitStep(stepId string, status events.StepStatus, payload events.StepPayload, errMsg string) {
	s.bus.Publish(events.StepEvent{
		StepId:    stepId,
		Status:    status,
		Payload:   payload,
		Err:       errMsg,
		Timestamp: time.Now().UTC(),
	})
}

// synthesize composes the closing summary from the aggregated outcome.
func synthesize(outcome *Outcome) string {
	if len(outcome.Results) == 0 {
		return fmt.Sprintf("No results found for %q.", outcome.Query)
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "Found %d results for %q using the %s strategy.",
		outcome.Stats.FinalCount, outcome.Query, outcome.Strategy)
	if outcome.Stats.DuplicatesRemoved > 0 {
		fmt.Fprintf(&builder, " Removed %d duplicates.", outcome.Stats.DuplicatesRemoved)
	}

	if len(outcome.Stats.Topics) > 0 {
		topics := make([]string, 0, len(outcome.Stats.Topics))
		for topic := range outcome.Stats.Topics {
			topics = append(topics, topic)
		}
		sort.Strings(topics)
		fmt.Fprintf(&builder, " Key topics: %s.", strings.Join(topics, ", "))
	}

	top := outcome.Results
	if len(top) > 3 {
		top = top[:3]
	}
	builder.WriteString(" Top sources:")
	for _, result := range top {
		fmt.Fprintf(&builder, " %s (%s);", result.Title, result.URL)
	}
	return strings.TrimSuffix(builder.String(), ";")
}
