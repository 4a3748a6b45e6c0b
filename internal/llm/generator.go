package llm

import (
	"log/slog"
	"os"
	"strings"
	"text/template"
	"time"

	"context"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/config"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Fixed sentinels substituted when an input section is empty, so the
// rendered prompt never contains a blank slot.
const (
	noContextSentinel = "No additional context provided."
	noHistorySentinel = "No previous conversation history."
)

// promptData feeds the chat prompt template.
type promptData struct {
	System   string
	History  string
	Context  string
	Question string
}

// Generator produces grounded answers from (query, context, history). The
// prompt template is loaded once at construction; a missing or invalid
// template file is a configuration fault.
type Generator struct {
	llm       llms.Model
	tmpl      *template.Template
	system    string
	modelName string
	logger    *slog.Logger
}

// NewGenerator creates a Generator talking to the configured Ollama model.
func NewGenerator(cfg config.Config, logger *slog.Logger) (*Generator, error) {
	client, err := ollama.New(
		ollama.WithModel(cfg.ChatModel),
		ollama.WithServerURL(cfg.OllamaHost),
	)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "create ollama chat client", err)
	}
	return NewGeneratorWithModel(client, cfg, logger)
}

// NewGeneratorWithModel builds a Generator over an existing model, which
// lets tests substitute a fake backend.
func NewGeneratorWithModel(model llms.Model, cfg config.Config, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := os.ReadFile(cfg.ChatTemplateFile)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "read chat prompt template", err)
	}
	tmpl, err := template.New("chat").Parse(string(raw))
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "parse chat prompt template", err)
	}

	logger.Info("chat generator initialized", "model", cfg.ChatModel, "template", cfg.ChatTemplateFile)
	return &Generator{
		llm:       model,
		tmpl:      tmpl,
		system:    cfg.SystemMessage,
		modelName: cfg.ChatModel,
		logger:    logger,
	}, nil
}

// Generate renders the prompt and asks the model for an answer. Backend
// failures surface as infrastructure faults; the caller decides whether
// that ends the turn.
func (g *Generator) Generate(ctx context.Context, query, contextText, history string) (string, error) {
	if strings.TrimSpace(contextText) == "" {
		contextText = noContextSentinel
	}
	if strings.TrimSpace(history) == "" {
		history = noHistorySentinel
	}

	var prompt strings.Builder
	err := g.tmpl.Execute(&prompt, promptData{
		System:   g.system,
		History:  history,
		Context:  contextText,
		Question: query,
	})
	if err != nil {
		return "", fault.Wrap(fault.KindInfrastructure, "render chat prompt", err)
	}

	start := time.Now()
	answer, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt.String())
	if err != nil {
		g.logger.Error("generation failed", "model", g.modelName,
			"duration_ms", time.Since(start).Milliseconds(), "error", err)
		return "", fault.Wrap(fault.KindInfrastructure, "generate response", err)
	}

	g.logger.Debug("generation complete", "model", g.modelName,
		"duration_ms", time.Since(start).Milliseconds(), "answer_len", len(answer))
	return answer, nil
}

// Model returns the chat model name.
func (g *Generator) Model() string {
	return g.modelName
}
