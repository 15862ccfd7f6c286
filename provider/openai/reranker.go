package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/metasearch/provider"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Reranker implements provider.Reranker using OpenAI-compatible embedding
// APIs. Documents are scored by cosine similarity between their embedding
// and the query embedding.
type Reranker struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ provider.Reranker = (*Reranker)(nil)

// newReranker is an internal constructor that returns the concrete type.
func newReranker(config *provider.Config) (*Reranker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Local OpenAI-compatible services accept any token.
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Reranker{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-reranker"),
	}, nil
}

// NewReranker creates a new embedding-based reranker using the provided
// configuration.
func NewReranker(config *provider.Config) (provider.Reranker, error) {
	return newReranker(config)
}

// Rerank scores each document against the query.
func (r *Reranker) Rerank(ctx context.Context, query string, documents []string) ([]provider.RankScore, error) {
	r.logger.Debug("reranking documents", "count", len(documents))

	if len(documents) == 0 {
		return []provider.RankScore{}, nil
	}

	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.logger.Error("failed to embed query", "err", err)
		return nil, err
	}

	docVectors, err := r.embedder.EmbedDocuments(ctx, documents)
	if err != nil {
		r.logger.Error("failed to embed documents", "count", len(documents), "err", err)
		return nil, err
	}

	queryVector = NormalizeVector(queryVector)
	scores := make([]provider.RankScore, len(docVectors))
	for i, vector := range docVectors {
		scores[i] = provider.RankScore{
			Index: i,
			Score: float64(dotProduct(queryVector, NormalizeVector(vector))),
		}
	}
	return scores, nil
}
