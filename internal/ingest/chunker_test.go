package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/index"
)

func TestSplitShortContentSingleChunk(t *testing.T) {
	c := NewChunker(1000, 150)
	chunks := c.Split("a short note")
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note", chunks[0])
}

func TestSplitEmptyContent(t *testing.T) {
	c := NewChunker(1000, 150)
	assert.Nil(t, c.Split("   \n\n  "))
}

func TestSplitRespectsParagraphBoundaries(t *testing.T) {
	paraA := strings.Repeat("alpha ", 30) // ~180 chars
	paraB := strings.Repeat("beta ", 30)
	paraC := strings.Repeat("gamma ", 30)
	content := strings.TrimSpace(paraA) + "\n\n" + strings.TrimSpace(paraB) + "\n\n" + strings.TrimSpace(paraC)

	c := NewChunker(200, 0)
	chunks := c.Split(content)
	require.GreaterOrEqual(t, len(chunks), 3)
	assert.True(t, strings.HasPrefix(chunks[0], "alpha"))
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 200)
	}
}

func TestSplitOversizedParagraphFallsBackToSentences(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("This is one reasonably sized sentence about the system. ")
	}
	c := NewChunker(300, 0)
	chunks := c.Split(strings.TrimSpace(b.String()))
	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 360)
		assert.True(t, strings.HasSuffix(chunk, "."))
	}
}

func TestSplitAppliesOverlap(t *testing.T) {
	paraA := strings.TrimSpace(strings.Repeat("first ", 40))
	paraB := strings.TrimSpace(strings.Repeat("second ", 40))
	c := NewChunker(250, 30)
	chunks := c.Split(paraA + "\n\n" + paraB)
	require.GreaterOrEqual(t, len(chunks), 2)
	// The second chunk starts with the tail of the first.
	assert.True(t, strings.HasPrefix(chunks[1], "first"))
}

func TestParseDocumentFrontmatter(t *testing.T) {
	doc := parseDocument("guide.md", "---\ntitle: Setup Guide\ntags: [infra]\n---\n\n# Heading\n\nbody")
	assert.Equal(t, "Setup Guide", doc.Title)
	assert.Equal(t, "# Heading\n\nbody", strings.TrimSpace(doc.Content))
}

func TestParseDocumentTitleFromHeading(t *testing.T) {
	doc := parseDocument("notes/intro.md", "# Getting Started\n\nbody")
	assert.Equal(t, "Getting Started", doc.Title)
}

func TestParseDocumentTitleFromFilename(t *testing.T) {
	doc := parseDocument("notes/plain.txt", "no headings here")
	assert.Equal(t, "plain", doc.Title)
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A\n\nalpha"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("beta"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignore.json"), []byte("{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden", "c.md"), []byte("hidden"), 0o644))

	docs, err := LoadDir(root)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	sources := []string{docs[0].Source, docs[1].Source}
	assert.Contains(t, sources, "a.md")
	assert.Contains(t, sources, "b.txt")
}

type stubEmbedder struct{ dim int }

func (s stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
	}
	return out, nil
}

type captureWriter struct {
	added   []index.Chunk
	deleted []string
}

func (w *captureWriter) Add(ctx context.Context, chunks []index.Chunk) error {
	w.added = append(w.added, chunks...)
	return nil
}

func (w *captureWriter) DeleteBySource(ctx context.Context, source string) error {
	w.deleted = append(w.deleted, source)
	return nil
}

func TestIngestDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "doc.md"), []byte("# Doc\n\nsome content"), 0o644))

	writer := &captureWriter{}
	svc := NewService(stubEmbedder{dim: 4}, writer, NewChunker(1000, 150),
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	stats, err := svc.IngestDir(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.Chunks)

	assert.Equal(t, []string{"doc.md"}, writer.deleted)
	require.Len(t, writer.added, 1)
	assert.Equal(t, "doc.md", writer.added[0].Source)
	assert.Equal(t, "Doc", writer.added[0].Metadata["title"])
	assert.Len(t, writer.added[0].Embedding, 4)
}
