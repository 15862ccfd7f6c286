package session

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/provider"
	"github.com/poiesic/metasearch/provider/mock"
	"github.com/poiesic/metasearch/storage/badger"
	"github.com/poiesic/metasearch/stream"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Lines(t *testing.T) []stream.Update {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()

	var updates []stream.Update
	scanner := bufio.NewScanner(bytes.NewReader(b.buf.Bytes()))
	for scanner.Scan() {
		var update stream.Update
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &update))
		updates = append(updates, update)
	}
	return updates
}

func sampleResults(prefix string) []core.SearchResult {
	return []core.SearchResult{
		{URL: "https://" + prefix + ".example/raft", Title: prefix + " guide to raft consensus", Snippet: "A tutorial walkthrough of leader election in raft clusters"},
		{URL: "https://" + prefix + ".example/paxos", Title: prefix + " guide to paxos", Snippet: "An overview of the paxos protocol for distributed agreement"},
	}
}

func newTestSession(t *testing.T, sink *syncBuffer, opts ...Option) *Session {
	t.Helper()

	taskRepo, planningRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	if sink != nil {
		opts = append(opts, WithSink(sink), WithWriteInterval(time.Millisecond))
	}
	opts = append(opts, WithRetry(1, time.Millisecond))
	s, err := New("session-1", "owner-1", taskRepo, planningRepo, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestRunCompletesWorkflow(t *testing.T) {
	alpha := mock.NewMockSearchProvider("alpha", sampleResults("alpha"))
	beta := mock.NewMockSearchProvider("beta", sampleResults("beta"))
	sink := &syncBuffer{}

	s := newTestSession(t, sink, WithProviders(alpha, beta))

	outcome, err := s.Run(context.Background(), "distributed consensus")
	require.NoError(t, err)

	assert.Equal(t, "distributed consensus", outcome.Query)
	assert.NotEmpty(t, outcome.EnhancedQuery)
	assert.NotEmpty(t, outcome.Strategy)
	assert.NotEmpty(t, outcome.Results)
	assert.NotEmpty(t, outcome.Summary)
	assert.Equal(t, len(outcome.Results), outcome.Stats.FinalCount)

	// Both providers served the primary query and two sub-queries.
	assert.GreaterOrEqual(t, alpha.CallCount(), 3)
	assert.GreaterOrEqual(t, beta.CallCount(), 3)

	s.Close()
	updates := sink.Lines(t)
	require.NotEmpty(t, updates)

	types := make(map[string]int)
	for _, update := range updates {
		types[update.Type]++
	}
	assert.NotZero(t, types["planning_status"])
	assert.NotZero(t, types["search_status"])
	assert.NotZero(t, types["aggregation_status"])
	assert.NotZero(t, types["synthesis_status"])
	assert.NotZero(t, types["completion"])
	assert.NotZero(t, types["workflow_started"])
	assert.NotZero(t, types["workflow_completed"])
}

func TestRunProviderFailureDegrades(t *testing.T) {
	healthy := mock.NewMockSearchProvider("healthy", sampleResults("healthy"))
	broken := mock.NewMockSearchProvider("broken", nil)
	broken.SearchFunc = func(ctx context.Context, query string, opts provider.SearchOptions) ([]core.SearchResult, error) {
		return nil, errors.New("connection refused")
	}
	sink := &syncBuffer{}

	s := newTestSession(t, sink, WithProviders(healthy, broken))

	outcome, err := s.Run(context.Background(), "graph databases")
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.Results)
	assert.Zero(t, outcome.Stats.ProviderCounts["broken"])

	s.Close()
	var failed bool
	for _, update := range sink.Lines(t) {
		if update.Type == "search_error" || (update.Error && update.ErrorType == "search_error") {
			failed = true
		}
	}
	assert.True(t, failed, "the broken provider must surface a failed search update")
}

func TestRunWithHumanReview(t *testing.T) {
	alpha := mock.NewMockSearchProvider("alpha", sampleResults("alpha"))
	sink := &syncBuffer{}

	reviewed := false
	s := newTestSession(t, sink,
		WithProviders(alpha),
		WithReviewFunc(func(ctx context.Context, results []core.SearchResult) error {
			reviewed = true
			return nil
		}))

	require.NoError(t, s.Planner().SetHumanReview(true))
	_, err := s.Run(context.Background(), "protein folding")
	require.NoError(t, err)
	assert.True(t, reviewed)

	s.Close()
	var awaiting, resumed bool
	for _, update := range sink.Lines(t) {
		switch update.Type {
		case "awaiting_user_input":
			awaiting = true
		case "user_input_received":
			resumed = true
		}
	}
	assert.True(t, awaiting)
	assert.True(t, resumed)
}

func TestRunReviewRejectionFailsWorkflow(t *testing.T) {
	alpha := mock.NewMockSearchProvider("alpha", sampleResults("alpha"))

	s := newTestSession(t, nil,
		WithProviders(alpha),
		WithReviewFunc(func(ctx context.Context, results []core.SearchResult) error {
			return errors.New("results rejected")
		}))

	require.NoError(t, s.Planner().SetHumanReview(true))
	_, err := s.Run(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "human review rejected")
}

func TestRunNoProviders(t *testing.T) {
	s := newTestSession(t, nil)

	outcome, err := s.Run(context.Background(), "a query into the void")
	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.Zero(t, outcome.Stats.OriginalCount)
	assert.Contains(t, outcome.Summary, "No results")
}

func TestResumeRestoresState(t *testing.T) {
	taskRepo, planningRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	alpha := mock.NewMockSearchProvider("alpha", sampleResults("alpha"))

	first, err := New("session-1", "owner-1", taskRepo, planningRepo,
		WithProviders(alpha), WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	_, err = first.Run(context.Background(), "vector databases")
	require.NoError(t, err)
	first.Close()

	second, err := New("session-1", "owner-1", taskRepo, planningRepo)
	require.NoError(t, err)
	defer second.Close()

	// Task persistence is asynchronous; retry until the write-through lands.
	require.Eventually(t, func() bool {
		if err := second.Resume(context.Background()); err != nil {
			return false
		}
		return len(second.Scheduler().Tasks()) == 3
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, core.StageReady, second.Planner().State().Stage)
}