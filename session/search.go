package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/poiesic/metasearch/aggregate"
	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/events"
	"github.com/poiesic/metasearch/planner"
	"github.com/poiesic/metasearch/provider"
)

// searchAll fans out the enhanced query plus the planned sub-queries to
// every provider concurrently and joins the batches. Within one provider's
// batch the primary query's results always come first, followed by
// sub-query results not already present. A provider whose every call fails
// contributes an empty batch and a failed step event, never an abort.
func (s *Session) searchAll(ctx context.Context, state core.PlanningState) []aggregate.Batch {
	providerNames := make([]string, len(s.providers))
	for i, p := range s.providers {
		providerNames[i] = p.Name()
	}
	s.emitStep(planner.StepSearch, events.StepStarted, events.StepPayload{
		Query:     state.Result.EnhancedQuery,
		Providers: providerNames,
	}, "")

	queries := append([]string{state.Result.EnhancedQuery}, state.Result.SubQueries...)

	// results[i][j] holds provider i's results for query j.
	results := make([][][]core.SearchResult, len(s.providers))
	errs := make([][]error, len(s.providers))
	for i := range s.providers {
		results[i] = make([][]core.SearchResult, len(queries))
		errs[i] = make([]error, len(queries))
	}

	var wg sync.WaitGroup
	for i, searchProvider := range s.providers {
		budget := state.Result.ResourceAllocation[searchProvider.Name()]
		if budget <= 0 {
			budget = defaultAllocation
		}

		for j, query := range queries {
			wg.Add(1)
			submitErr := s.pool.Submit(func() {
				defer wg.Done()
				results[i][j], errs[i][j] = searchProvider.Search(ctx, query, provider.SearchOptions{
					MaxResults: budget,
					Timeout:    s.searchTimeout,
				})
			})
			if submitErr != nil {
				errs[i][j] = submitErr
				wg.Done()
			}
		}
	}
	wg.Wait()

	batches := make([]aggregate.Batch, 0, len(s.providers))
	total := 0
	for i, searchProvider := range s.providers {
		batch := joinProviderResults(searchProvider.Name(), results[i], errs[i])

		if failed := firstError(errs[i]); failed != nil && len(batch.Results) == 0 {
			s.emitStep(planner.StepSearch, events.StepFailed, events.StepPayload{
				Providers: []string{searchProvider.Name()},
			}, fmt.Sprintf("provider %s: %v", searchProvider.Name(), failed))
		}

		batches = append(batches, batch)
		total += len(batch.Results)
	}

	s.emitStep(planner.StepSearch, events.StepCompleted, events.StepPayload{
		Query:       state.Result.EnhancedQuery,
		Providers:   providerNames,
		ResultCount: total,
	}, "")

	s.bus.Publish(events.ProgressEvent{
		StepId:    planner.StepSearch,
		Current:   len(batches),
		Total:     len(s.providers),
		Timestamp: time.Now().UTC(),
	})

	return batches
}

// joinProviderResults merges one provider's per-query result sets: primary
// results first, then sub-query results whose normalized URL has not been
// seen. Failed calls contribute nothing.
func joinProviderResults(providerName string, perQuery [][]core.SearchResult, errs []error) aggregate.Batch {
	batch := aggregate.Batch{Provider: providerName}
	seen := make(map[string]bool)

	for j, results := range perQuery {
		if errs[j] != nil {
			continue
		}
		for _, result := range results {
			key := aggregate.NormalizeURL(result.URL)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			batch.Results = append(batch.Results, result)
		}
	}
	return batch
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
