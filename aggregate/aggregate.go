package aggregate

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/metasearch/core"
	"github.com/poiesic/metasearch/provider"
)

// Default pipeline thresholds. Override them through Config rather than
// editing.
const (
	// DefaultClusterThreshold is the minimum trigram Jaccard similarity for
	// two results to be considered near-duplicates.
	DefaultClusterThreshold = 0.65

	// DefaultSnippetReplaceRatio is how much longer an incoming snippet must
	// be to replace the existing one outright.
	DefaultSnippetReplaceRatio = 1.5

	// DefaultContentReplaceRatio is how much longer incoming raw content
	// must be to replace the existing content.
	DefaultContentReplaceRatio = 1.2

	// DefaultMaxHighlights caps the highlight list after a merge.
	DefaultMaxHighlights = 5

	// DefaultMinClusterTextLen is the minimum text length for a result to
	// participate in near-duplicate clustering.
	DefaultMinClusterTextLen = 20

	// DefaultRerankAttempts is the rerank attempt budget (one call plus two
	// retries).
	DefaultRerankAttempts = 3

	// DefaultRerankBaseDelay is the base backoff delay between rerank retries.
	DefaultRerankBaseDelay = 500 * time.Millisecond

	// DefaultRerankTimeout bounds a single rerank call.
	DefaultRerankTimeout = 10 * time.Second

	// DefaultTopicCount is how many topics extraction returns.
	DefaultTopicCount = 5

	// DefaultMinTopicResults is the minimum number of results a term must
	// appear in to count as a topic.
	DefaultMinTopicResults = 2

	// minSnippetConcatLen is the minimum incoming snippet length for
	// concatenation during a merge.
	minSnippetConcatLen = 50
)

// Config holds the tunable thresholds of the aggregation pipeline.
type Config struct {
	ClusterThreshold    float64
	SnippetReplaceRatio float64
	ContentReplaceRatio float64
	MaxHighlights       int
	MinClusterTextLen   int
	RerankAttempts      int
	RerankBaseDelay     time.Duration
	RerankTimeout       time.Duration
	TopicCount          int
	MinTopicResults     int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		ClusterThreshold:    DefaultClusterThreshold,
		SnippetReplaceRatio: DefaultSnippetReplaceRatio,
		ContentReplaceRatio: DefaultContentReplaceRatio,
		MaxHighlights:       DefaultMaxHighlights,
		MinClusterTextLen:   DefaultMinClusterTextLen,
		RerankAttempts:      DefaultRerankAttempts,
		RerankBaseDelay:     DefaultRerankBaseDelay,
		RerankTimeout:       DefaultRerankTimeout,
		TopicCount:          DefaultTopicCount,
		MinTopicResults:     DefaultMinTopicResults,
	}
}

// Aggregator merges result batches from multiple providers into one ranked,
// deduplicated list. It holds no per-call state and is safe for concurrent
// use. Provider and rerank failures degrade the output but never abort a
// call.
type Aggregator struct {
	reranker provider.Reranker
	config   Config
	logger   *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator) error

// WithReranker sets the relevance reranker. Without one, results keep their
// deterministic fallback ordering.
func WithReranker(reranker provider.Reranker) Option {
	return func(a *Aggregator) error {
		a.reranker = reranker
		return nil
	}
}

// WithConfig overrides the pipeline thresholds.
func WithConfig(config Config) Option {
	return func(a *Aggregator) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// New creates a new aggregator.
func New(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		config: DefaultConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Batch is one provider's result set, tagged with its provider label.
type Batch struct {
	Provider string
	Results  []core.SearchResult
}

// Stats summarizes one aggregation call.
type Stats struct {
	// ProviderCounts is the number of input results per provider label.
	ProviderCounts map[string]int `json:"provider_counts"`

	// OriginalCount is the number of usable input results across all batches.
	OriginalCount int `json:"original_count"`

	// FinalCount is the number of results after dedup and clustering.
	FinalCount int `json:"final_count"`

	// DuplicatesRemoved is OriginalCount - FinalCount.
	DuplicatesRemoved int `json:"duplicates_removed"`

	// Topics maps extracted topic terms to the number of results mentioning
	// them. Empty when too few results share terms.
	Topics map[string]int `json:"topics,omitempty"`
}

// Aggregate runs the full pipeline: tag and flatten, exact-URL dedup,
// near-duplicate clustering, reranking against the enhanced query, and
// best-effort topic extraction.
//
// Any batch may be empty or absent. With no usable input at all, the call
// short-circuits to an empty result with zero stats.
func (a *Aggregator) Aggregate(ctx context.Context, batches []Batch, enhancedQuery string) ([]core.SearchResult, Stats) {
	stats := Stats{ProviderCounts: make(map[string]int)}

	// 1. Tag and flatten
	flattened := make([]core.SearchResult, 0)
	for _, batch := range batches {
		stats.ProviderCounts[batch.Provider] += len(batch.Results)
		for _, result := range batch.Results {
			if strings.TrimSpace(result.URL) == "" {
				continue
			}
			if result.Provider == "" {
				result.Provider = batch.Provider
			}
			flattened = append(flattened, result)
		}
	}
	stats.OriginalCount = len(flattened)

	if len(flattened) == 0 {
		return []core.SearchResult{}, stats
	}

	// 2. Exact-URL dedup and merge
	deduped := a.dedupeByURL(flattened)

	// 3. Near-duplicate content clustering
	clustered := a.clusterNearDuplicates(deduped)
	stats.FinalCount = len(clustered)
	stats.DuplicatesRemoved = stats.OriginalCount - stats.FinalCount

	// 4. Reranking, with deterministic fallback
	if !a.rerank(ctx, clustered, enhancedQuery) {
		fallbackOrder(clustered)
	}

	// 5. Topic extraction, best-effort
	stats.Topics = a.extractTopics(clustered)

	return clustered, stats
}
