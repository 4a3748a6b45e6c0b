// Package retrieval performs semantic search over the chunk index and
// filters candidates by relevance before context assembly.
package retrieval

import (
	"context"
	"log/slog"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/index"
)

// Chunk is a retrieved candidate with its dissimilarity score.
// Distance is only meaningful when HasDistance is true.
type Chunk struct {
	Content     string
	Source      string
	Metadata    map[string]any
	Distance    float64
	HasDistance bool
}

// QueryEmbedder turns query text into an embedding vector.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkIndex is the slice of the index the retriever consumes.
type ChunkIndex interface {
	Count(ctx context.Context) (int, error)
	KNNSearch(ctx context.Context, embedding []float32, k int) ([]index.Hit, error)
}

// Retriever performs semantic search. Search never fails: any problem
// (index not ready, empty query, embedding failure) degrades to an empty
// candidate list and is only logged.
type Retriever struct {
	embedder QueryEmbedder
	index    ChunkIndex
	logger   *slog.Logger
}

// NewRetriever creates a retriever over an embedder and a chunk index.
func NewRetriever(embedder QueryEmbedder, idx ChunkIndex, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{embedder: embedder, index: idx, logger: logger}
}

// IsReady reports whether the index can serve searches.
func (r *Retriever) IsReady(ctx context.Context) bool {
	_, err := r.Count(ctx)
	return err == nil
}

// Count returns the number of indexed chunks. An unreachable index is a
// not-ready condition rather than a generic failure so callers can retry.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	n, err := r.index.Count(ctx)
	if err != nil {
		return 0, fault.Wrap(fault.KindNotReady, "chunk index not ready", err)
	}
	return n, nil
}

// Search returns up to k candidates ordered by increasing distance.
func (r *Retriever) Search(ctx context.Context, query string, k int) []Chunk {
	if query == "" || k <= 0 {
		return nil
	}

	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, returning no candidates", "error", err)
		return nil
	}

	hits, err := r.index.KNNSearch(ctx, embedding, k)
	if err != nil {
		r.logger.Warn("index search failed, returning no candidates", "error", err)
		return nil
	}

	chunks := make([]Chunk, 0, len(hits))
	for _, hit := range hits {
		chunks = append(chunks, Chunk{
			Content:     hit.Content,
			Source:      hit.Source,
			Metadata:    hit.Metadata,
			Distance:    hit.Distance,
			HasDistance: hit.HasDistance,
		})
	}
	return chunks
}
