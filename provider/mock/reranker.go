package mock

import (
	"context"
	"strings"

	"github.com/poiesic/metasearch/provider"
)

// MockReranker is a test double for provider.Reranker.
// It allows custom behavior injection via function fields.
type MockReranker struct {
	// RerankFunc is called by Rerank if set.
	// If nil, uses default deterministic token-overlap scoring.
	RerankFunc func(ctx context.Context, query string, documents []string) ([]provider.RankScore, error)

	callCount int
}

var _ provider.Reranker = (*MockReranker)(nil)

// NewMockReranker creates a mock reranker with default deterministic behavior.
func NewMockReranker() *MockReranker {
	return &MockReranker{}
}

// Rerank scores documents by the fraction of query tokens they contain.
// The same inputs always produce the same scores.
func (m *MockReranker) Rerank(ctx context.Context, query string, documents []string) ([]provider.RankScore, error) {
	m.callCount++

	if m.RerankFunc != nil {
		return m.RerankFunc(ctx, query, documents)
	}

	queryTokens := strings.Fields(strings.ToLower(query))
	scores := make([]provider.RankScore, len(documents))
	for i, doc := range documents {
		lower := strings.ToLower(doc)
		matched := 0
		for _, token := range queryTokens {
			if strings.Contains(lower, token) {
				matched++
			}
		}
		score := 0.0
		if len(queryTokens) > 0 {
			score = float64(matched) / float64(len(queryTokens))
		}
		scores[i] = provider.RankScore{Index: i, Score: score}
	}
	return scores, nil
}

// CallCount returns the number of Rerank calls.
func (m *MockReranker) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockReranker) Reset() {
	m.callCount = 0
	m.RerankFunc = nil
}
