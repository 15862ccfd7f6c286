package aggregate

import (
	"context"
	"sort"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/provider"
)

// rerank scores results against the query with the configured reranker and
// sorts them in place by the new scores. It reports whether reranking
// happened; on any failure the results are left untouched so the caller can
// apply the fallback ordering.
func (a *Aggregator) rerank(ctx context.Context, results []core.SearchResult, query string) bool {
	if a.reranker == nil || query == "" || len(results) == 0 {
		return false
	}

	documents := make([]string, len(results))
	for i, result := range results {
		documents[i] = rerankDocument(result)
	}

	var scores []provider.RankScore
	operation := func() error {
		callCtx, cancel := context.WithTimeout(ctx, a.config.RerankTimeout)
		defer cancel()
		ranked, err := a.reranker.Rerank(callCtx, query, documents)
		if err != nil {
			return err
		}
		scores = ranked
		return nil
	}

	err := provider.RetryWithBackoff(ctx, operation, a.config.RerankAttempts, a.config.RerankBaseDelay)
	if err != nil {
		a.logger.Warn("reranking failed, keeping fallback ordering", "error", err)
		return false
	}

	for _, rank := range scores {
		if rank.Index < 0 || rank.Index >= len(results) {
			continue
		}
		score := rank.Score
		results[rank.Index].Score = &score
	}

	sort.SliceStable(results, func(i, j int) bool {
		return scoreOf(results[i]) > scoreOf(results[j])
	})
	return true
}

func rerankDocument(result core.SearchResult) string {
	if result.Snippet != "" {
		return result.Title + " " + result.Snippet
	}
	return result.Title
}

func scoreOf(result core.SearchResult) float64 {
	if result.Score == nil {
		return 0
	}
	return *result.Score
}

// fallbackOrder sorts results in place without a reranker: by provider score
// descending, then results carrying both a title and a snippet first, then
// by parseable publication date descending. The sort is stable so the
// incoming order breaks any remaining ties.
func fallbackOrder(results []core.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]

		switch {
		case a.Score != nil && b.Score != nil:
			if *a.Score != *b.Score {
				return *a.Score > *b.Score
			}
		case a.Score != nil:
			return true
		case b.Score != nil:
			return false
		}

		aComplete := a.Title != "" && a.Snippet != ""
		bComplete := b.Title != "" && b.Snippet != ""
		if aComplete != bComplete {
			return aComplete
		}

		aDate, aOk := parseDate(a.PublishedAt)
		bDate, bOk := parseDate(b.PublishedAt)
		switch {
		case aOk && bOk:
			return aDate.After(bDate)
		case aOk:
			return true
		case bOk:
			return false
		}
		return false
	})
}
