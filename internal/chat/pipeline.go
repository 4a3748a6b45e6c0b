// Package chat orchestrates a single conversational turn: intent
// classification, session memory, retrieval, relevance filtering,
// answer generation, memory persistence and detached audit logging.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/audit"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/observability"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/retrieval"
)

// Retriever finds candidate chunks for a query. Search degrades to an
// empty result instead of failing.
type Retriever interface {
	IsReady(ctx context.Context) bool
	Search(ctx context.Context, query string, k int) []retrieval.Chunk
}

// MemoryStore persists the rolling conversation window per session.
type MemoryStore interface {
	Load(ctx context.Context, sessionID string) (string, error)
	Save(ctx context.Context, sessionID, question, answer string) error
	Clear(ctx context.Context, sessionID string) error
}

// IntentClassifier labels a query with one of the configured
// categories. It never fails; unclassifiable input maps to the
// default category.
type IntentClassifier interface {
	Classify(ctx context.Context, query string) string
}

// Generator produces the final answer from the assembled prompt parts.
type Generator interface {
	Generate(ctx context.Context, query, contextText, history string) (string, error)
}

// AuditSink receives completed turns without blocking the caller.
type AuditSink interface {
	Log(rec audit.Record)
}

// Result is the outcome of one completed turn.
type Result struct {
	Answer     string
	Intent     string
	ChunksUsed int
}

// Pipeline runs the fixed turn sequence. All stages share the request
// context; only the audit hand-off is detached from it.
type Pipeline struct {
	retriever  Retriever
	memory     MemoryStore
	classifier IntentClassifier
	generator  Generator
	filter     *retrieval.Filter
	auditor    AuditSink
	metrics    *observability.Metrics
	logger     *slog.Logger
	searchK    int
}

// Options carries the pipeline's collaborators. Auditor and Metrics
// are optional.
type Options struct {
	Retriever  Retriever
	Memory     MemoryStore
	Classifier IntentClassifier
	Generator  Generator
	Filter     *retrieval.Filter
	Auditor    AuditSink
	Metrics    *observability.Metrics
	Logger     *slog.Logger
	SearchK    int
}

func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{
		retriever:  opts.Retriever,
		memory:     opts.Memory,
		classifier: opts.Classifier,
		generator:  opts.Generator,
		filter:     opts.Filter,
		auditor:    opts.Auditor,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
		searchK:    opts.SearchK,
	}
}

// Answer runs one turn for the given query and session. The retriever
// must report ready before any other stage runs; nothing else is
// attempted otherwise.
func (p *Pipeline) Answer(ctx context.Context, query, sessionID string) (Result, error) {
	if query == "" {
		return Result{}, fault.New(fault.KindApplication, "query must not be empty")
	}

	if !p.retriever.IsReady(ctx) {
		p.countTurn("not_ready")
		return Result{}, fault.New(fault.KindNotReady, "knowledge index is not ready")
	}

	intent := p.classifyStage(ctx, query)

	history, err := p.loadMemoryStage(ctx, sessionID)
	if err != nil {
		p.countTurn("error")
		return Result{}, fault.Wrap(fault.KindApplication, "load session memory", err)
	}

	contextText, used := p.retrieveStage(ctx, query)

	answer, err := p.generateStage(ctx, query, contextText, history)
	if err != nil {
		p.countTurn("error")
		return Result{}, fault.Wrap(fault.KindApplication, "generate answer", err)
	}

	if err := p.saveMemoryStage(ctx, sessionID, query, answer); err != nil {
		p.countTurn("error")
		return Result{}, fault.Wrap(fault.KindApplication, "persist session memory", err)
	}

	if p.auditor != nil {
		p.auditor.Log(audit.Record{
			SessionID:  sessionID,
			UserQuery:  query,
			AIResponse: answer,
			CreatedAt:  time.Now().UTC(),
		})
	}

	p.countTurn("ok")
	return Result{Answer: answer, Intent: intent, ChunksUsed: used}, nil
}

// ClearHistory drops the stored conversation window for a session.
func (p *Pipeline) ClearHistory(ctx context.Context, sessionID string) error {
	if err := p.memory.Clear(ctx, sessionID); err != nil {
		return fault.Wrap(fault.KindApplication, "clear session memory", err)
	}
	return nil
}

func (p *Pipeline) classifyStage(ctx context.Context, query string) string {
	defer p.observeStage("classify", time.Now())
	intent := p.classifier.Classify(ctx, query)
	if p.metrics != nil {
		p.metrics.IntentTotal.WithLabelValues(intent).Inc()
	}
	p.logger.Debug("classified query", "intent", intent)
	return intent
}

func (p *Pipeline) loadMemoryStage(ctx context.Context, sessionID string) (string, error) {
	defer p.observeStage("load_memory", time.Now())
	return p.memory.Load(ctx, sessionID)
}

func (p *Pipeline) retrieveStage(ctx context.Context, query string) (string, int) {
	defer p.observeStage("retrieve", time.Now())
	candidates := p.retriever.Search(ctx, query, p.searchK)
	kept := p.filter.Apply(candidates)
	if p.metrics != nil {
		p.metrics.ChunksKept.Add(float64(len(kept)))
		p.metrics.ChunksDropped.Add(float64(len(candidates) - len(kept)))
	}
	p.logger.Debug("filtered retrieval results", "retrieved", len(candidates), "kept", len(kept))
	return retrieval.BuildContext(kept), len(kept)
}

func (p *Pipeline) generateStage(ctx context.Context, query, contextText, history string) (string, error) {
	defer p.observeStage("generate", time.Now())
	return p.generator.Generate(ctx, query, contextText, history)
}

func (p *Pipeline) saveMemoryStage(ctx context.Context, sessionID, query, answer string) error {
	defer p.observeStage("persist_memory", time.Now())
	return p.memory.Save(ctx, sessionID, query, answer)
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

func (p *Pipeline) countTurn(outcome string) {
	if p.metrics != nil {
		p.metrics.TurnsTotal.WithLabelValues(outcome).Inc()
	}
}
