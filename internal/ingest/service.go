package ingest

import (
	"context"
	"log/slog"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/index"
)

// BatchEmbedder computes embeddings for a batch of texts.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkWriter is the index surface ingestion needs.
type ChunkWriter interface {
	Add(ctx context.Context, chunks []index.Chunk) error
	DeleteBySource(ctx context.Context, source string) error
}

// Stats summarizes one ingestion run.
type Stats struct {
	Documents int
	Chunks    int
}

// Service runs the load, chunk, embed, store sequence.
type Service struct {
	embedder BatchEmbedder
	writer   ChunkWriter
	chunker  *Chunker
	logger   *slog.Logger
}

func NewService(embedder BatchEmbedder, writer ChunkWriter, chunker *Chunker, logger *slog.Logger) *Service {
	return &Service{embedder: embedder, writer: writer, chunker: chunker, logger: logger}
}

// IngestDir loads every document under root and indexes it. Existing
// chunks from the same source are replaced, so re-running over the
// same directory is idempotent.
func (s *Service) IngestDir(ctx context.Context, root string) (Stats, error) {
	docs, err := LoadDir(root)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	for _, doc := range docs {
		n, err := s.ingestDocument(ctx, doc)
		if err != nil {
			return stats, err
		}
		stats.Documents++
		stats.Chunks += n
		s.logger.Info("indexed document", "source", doc.Source, "chunks", n)
	}
	return stats, nil
}

func (s *Service) ingestDocument(ctx context.Context, doc Document) (int, error) {
	pieces := s.chunker.Split(doc.Content)
	if len(pieces) == 0 {
		return 0, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, pieces)
	if err != nil {
		return 0, fault.Wrap(fault.KindInfrastructure, "embed "+doc.Source, err)
	}
	if len(vectors) != len(pieces) {
		return 0, fault.Newf(fault.KindInfrastructure,
			"embedding count mismatch for %s: %d texts, %d vectors", doc.Source, len(pieces), len(vectors))
	}

	if err := s.writer.DeleteBySource(ctx, doc.Source); err != nil {
		return 0, err
	}

	chunks := make([]index.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = index.Chunk{
			Content: piece,
			Source:  doc.Source,
			Metadata: map[string]any{
				"title":    doc.Title,
				"position": i,
			},
			Embedding: vectors[i],
		}
	}
	if err := s.writer.Add(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
