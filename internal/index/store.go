package index

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Chunk is a document fragment stored in the index.
type Chunk struct {
	Content   string         `json:"content"`
	Source    string         `json:"source"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding"`
}

// Hit is a chunk returned by a KNN search. Distance is the cosine
// dissimilarity reported by the index: 0 means identical direction.
// HasDistance is false when the engine omitted the score.
type Hit struct {
	Content     string
	Source      string
	Metadata    map[string]any
	Distance    float64
	HasDistance bool
}

type hitRow struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata"`
	Distance *float64       `json:"distance"`
}

type countRow struct {
	Count int `json:"count"`
}

// Add inserts chunks into the index.
func (c *Client) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	_, err := surrealdb.Query[any](ctx, c.db, `
		FOR $chunk IN $chunks {
			CREATE chunk SET
				content = $chunk.content,
				source = $chunk.source,
				metadata = $chunk.metadata,
				embedding = $chunk.embedding;
		}
	`, map[string]any{"chunks": chunks})
	if err != nil {
		return fault.Wrap(fault.KindInfrastructure, "add chunks", err)
	}
	return nil
}

// Count returns the number of indexed chunks.
func (c *Client) Count(ctx context.Context) (int, error) {
	results, err := surrealdb.Query[[]countRow](ctx, c.db, `
		SELECT count() AS count FROM chunk GROUP ALL
	`, nil)
	if err != nil {
		return 0, fault.Wrap(fault.KindInfrastructure, "count chunks", err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return 0, nil
	}
	return (*results)[0].Result[0].Count, nil
}

// KNNSearch returns the k nearest chunks for the embedding, closest first.
func (c *Client) KNNSearch(ctx context.Context, embedding []float32, k int) ([]Hit, error) {
	if k <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	// HNSW KNN with ef=40 for recall; distance surfaced per row so the
	// caller can apply its relevance threshold. The KNN operator takes
	// literal bounds, hence the Sprintf.
	sql := fmt.Sprintf(`
		SELECT content, source, metadata, vector::distance::knn() AS distance
		FROM chunk
		WHERE embedding <|%d,40|> $emb
		ORDER BY distance ASC
	`, k)

	results, err := surrealdb.Query[[]hitRow](ctx, c.db, sql, map[string]any{
		"emb": embedding,
	})
	if err != nil {
		return nil, fault.Wrap(fault.KindInfrastructure, "knn search", err)
	}

	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	rows := (*results)[0].Result
	hits := make([]Hit, 0, len(rows))
	for _, row := range rows {
		hit := Hit{
			Content:  row.Content,
			Source:   row.Source,
			Metadata: row.Metadata,
		}
		if row.Distance != nil {
			hit.Distance = *row.Distance
			hit.HasDistance = true
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// DeleteBySource removes every chunk ingested from the given source,
// used when a document is re-ingested.
func (c *Client) DeleteBySource(ctx context.Context, source string) error {
	_, err := surrealdb.Query[any](ctx, c.db, `
		DELETE chunk WHERE source = $source
	`, map[string]any{"source": source})
	if err != nil {
		return fault.Wrap(fault.KindInfrastructure, "delete chunks by source", err)
	}
	return nil
}
