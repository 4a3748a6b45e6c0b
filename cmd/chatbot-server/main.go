// Package main provides the chatbot HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/audit"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/chat"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/config"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/httpapi"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/index"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/llm"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/memory"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/observability"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/retrieval"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/startup"
)

const connectTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting chatbot-server", "addr", cfg.BindAddr,
		"chat_model", cfg.ChatModel, "embedding_model", cfg.EmbeddingModel)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	// Vector index.
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
	defer idx.Close(context.Background())
	if err := idx.InitSchema(ctx); err != nil {
		return err
	}

	// Models.
	embedder, err := llm.NewEmbedder(cfg, logger)
	if err != nil {
		return err
	}
	generator, err := llm.NewGenerator(cfg, logger)
	if err != nil {
		return err
	}
	classifier, err := llm.NewIntentClassifier(cfg, logger)
	if err != nil {
		return err
	}

	// Session memory.
	sessions, err := memory.NewRedisStore(ctx, memory.RedisOptions{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.SessionKeyPrefix,
		Window:    cfg.MemoryWindowSize,
		TTL:       cfg.SessionTTL,
	}, logger)
	if err != nil {
		return err
	}
	defer sessions.Close()

	// Audit sink. Runs without durable audit when no database is
	// configured.
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.DatabaseURL != "" {
		recorder, err = audit.NewPostgresRecorder(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
	}
	defer recorder.Close()
	auditor := audit.NewWorker(recorder, cfg.AuditQueueSize, logger)
	defer auditor.Close()

	retriever := retrieval.NewRetriever(embedder, idx, logger)
	metrics := observability.New(cfg.MetricsNamespace, func() float64 {
		return float64(auditor.QueueDepth())
	})

	pipeline := chat.NewPipeline(chat.Options{
		Retriever:  retriever,
		Memory:     sessions,
		Classifier: classifier,
		Generator:  generator,
		Filter:     retrieval.NewFilter(cfg.RelevanceThreshold, logger),
		Auditor:    auditor,
		Metrics:    metrics,
		Logger:     logger,
		SearchK:    cfg.SearchK,
	})

	// All backends must answer before we accept traffic.
	runner := startup.NewRunner(cfg.StartupRetryAttempts, cfg.StartupRetryDelay, logger)
	checkCtx, checkCancel := context.WithCancel(context.Background())
	defer checkCancel()
	if err := runner.Run(checkCtx,
		startup.IndexCheck(idx),
		startup.PingCheck("session-store", sessions),
		startup.PingCheck("audit-sink", auditor),
		startup.GenerationCheck(generator),
	); err != nil {
		return err
	}

	api := httpapi.NewServer(pipeline, retriever, metrics.Handler(), logger)
	httpServer := &http.Server{
		Addr:         cfg.BindAddr,
		Handler:      api.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second, // long for LLM responses
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
