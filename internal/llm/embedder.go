// Package llm provides generation, intent classification and embedding
// services backed by a local Ollama runtime through langchaingo.
package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/config"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Embedder wraps langchaingo embeddings with dimension validation.
type Embedder struct {
	model     embeddings.Embedder
	dimension int
	modelName string
	logger    *slog.Logger
}

// NewEmbedder creates an Ollama-backed embedder from configuration.
func NewEmbedder(cfg config.Config, logger *slog.Logger) (*Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := ollama.New(
		ollama.WithModel(cfg.EmbeddingModel),
		ollama.WithServerURL(cfg.OllamaHost),
	)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "create ollama embedding client", err)
	}

	model, err := embeddings.NewEmbedder(client)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "create embedder", err)
	}

	return &Embedder{
		model:     model,
		dimension: cfg.EmbeddingDimension,
		modelName: cfg.EmbeddingModel,
		logger:    logger,
	}, nil
}

// Embed generates an embedding vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vectors, err := e.model.EmbedDocuments(ctx, []string{text})
	duration := time.Since(start)

	if err != nil {
		e.logger.Warn("embedding failed", "model", e.modelName, "text_len", len(text),
			"duration_ms", duration.Milliseconds(), "error", err)
		return nil, fault.Wrap(fault.KindInfrastructure, "embed", err)
	}
	if len(vectors) == 0 {
		return nil, fault.New(fault.KindInfrastructure, "no embedding returned")
	}

	embedding := vectors[0]
	if e.dimension > 0 && len(embedding) != e.dimension {
		return nil, fault.Newf(fault.KindInfrastructure,
			"embedding dimension mismatch: got %d, want %d (model: %s)",
			len(embedding), e.dimension, e.modelName)
	}

	e.logger.Debug("embedding complete", "model", e.modelName, "text_len", len(text),
		"duration_ms", duration.Milliseconds())
	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := e.model.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fault.Wrap(fault.KindInfrastructure, "embed batch", err)
	}
	if len(vectors) != len(texts) {
		return nil, fault.Newf(fault.KindInfrastructure,
			"embedding count mismatch: got %d, want %d", len(vectors), len(texts))
	}
	for i, v := range vectors {
		if e.dimension > 0 && len(v) != e.dimension {
			return nil, fault.Newf(fault.KindInfrastructure,
				"embedding %d dimension mismatch: got %d, want %d", i, len(v), e.dimension)
		}
	}
	return vectors, nil
}

// Model returns the embedding model name.
func (e *Embedder) Model() string {
	return e.modelName
}

// Dimension returns the expected embedding dimension.
func (e *Embedder) Dimension() int {
	return e.dimension
}
