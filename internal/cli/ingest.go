package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/config"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/index"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/ingest"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/llm"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index documents into the knowledge base",
	Long: `Load markdown and text files from a directory, split them into
chunks, embed them and store them in the vector index.

Talks to SurrealDB and Ollama directly, so it works even when the
chatbot server is not running. Re-ingesting the same directory replaces
previously indexed chunks from the same files.

Examples:
  chatbot ingest                 # use the configured documents path
  chatbot ingest ./docs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	root := cfg.DocumentsPath
	if len(args) == 1 {
		root = args[0]
	}

	ctx := cmd.Context()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	idx, err := index.NewClient(ctx, index.Options{
		URL:       cfg.SurrealDBURL,
		Namespace: cfg.SurrealDBNamespace,
		Database:  cfg.SurrealDBDatabase,
		Username:  cfg.SurrealDBUser,
		Password:  cfg.SurrealDBPass,
		Dimension: cfg.EmbeddingDimension,
	}, logger)
	if err != nil {
		return err
	}
	defer idx.Close(ctx)

	if err := idx.InitSchema(ctx); err != nil {
		return err
	}

	embedder, err := llm.NewEmbedder(cfg, logger)
	if err != nil {
		return err
	}

	svc := ingest.NewService(embedder, idx, ingest.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap), logger)
	stats, err := svc.IngestDir(ctx, root)
	if err != nil {
		return err
	}

	fmt.Printf("Indexed %d chunks from %d documents\n", stats.Chunks, stats.Documents)
	return nil
}
