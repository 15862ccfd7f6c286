package provider

import (
	"context"
	"time"

	"github.com/poiesic/metasearch/core"
)

// SearchOptions bounds a single provider call.
type SearchOptions struct {
	// MaxResults caps the number of results requested from the provider.
	// Zero means provider default.
	MaxResults int

	// Timeout bounds the call. Zero means no per-call timeout beyond the
	// caller's context.
	Timeout time.Duration
}

// SearchProvider is one external search/content source.
// Implementations must be thread-safe for concurrent use. The core never
// assumes availability: a failed call is treated as zero results for that
// provider, never as a fatal error.
type SearchProvider interface {
	// Name returns the provider label attached to results that arrive
	// without one.
	Name() string

	// Search runs one query and returns raw candidate results.
	Search(ctx context.Context, query string, opts SearchOptions) ([]core.SearchResult, error)
}

// RankScore is one relevance score returned by a Reranker, addressing a
// document by its position in the submitted batch.
type RankScore struct {
	Index int
	Score float64
}

// Reranker scores documents against a query for relevance reordering.
// Implementations must be thread-safe for concurrent use. Callers wrap
// Rerank in RetryWithBackoff and fall back to deterministic ordering when
// all attempts fail.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RankScore, error)
}
