package llm

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"text/template"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/config"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// intentPromptData feeds the intent classification template.
type intentPromptData struct {
	Categories string
	Question   string
}

// IntentClassifier labels a query with one of a closed set of categories.
// Classification is advisory: Classify never fails, it degrades to the
// configured default intent on any backend error, empty output or a label
// outside the category set.
type IntentClassifier struct {
	llm           llms.Model
	tmpl          *template.Template
	categories    []string
	defaultIntent string
	modelName     string
	logger        *slog.Logger
}

// NewIntentClassifier creates a classifier over the configured Ollama model.
func NewIntentClassifier(cfg config.Config, logger *slog.Logger) (*IntentClassifier, error) {
	client, err := ollama.New(
		ollama.WithModel(cfg.IntentModel),
		ollama.WithServerURL(cfg.OllamaHost),
	)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "create ollama intent client", err)
	}
	return NewIntentClassifierWithModel(client, cfg, logger)
}

// NewIntentClassifierWithModel builds a classifier over an existing model.
func NewIntentClassifierWithModel(model llms.Model, cfg config.Config, logger *slog.Logger) (*IntentClassifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := os.ReadFile(cfg.IntentTemplateFile)
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "read intent prompt template", err)
	}
	tmpl, err := template.New("intent").Parse(string(raw))
	if err != nil {
		return nil, fault.Wrap(fault.KindConfiguration, "parse intent prompt template", err)
	}

	logger.Info("intent classifier initialized",
		"model", cfg.IntentModel, "categories", len(cfg.IntentCategories), "default", cfg.DefaultIntent)
	return &IntentClassifier{
		llm:           model,
		tmpl:          tmpl,
		categories:    cfg.IntentCategories,
		defaultIntent: cfg.DefaultIntent,
		modelName:     cfg.IntentModel,
		logger:        logger,
	}, nil
}

// Classify returns the intent label for the query, or the default intent
// when classification cannot produce a valid label.
func (c *IntentClassifier) Classify(ctx context.Context, query string) string {
	var prompt strings.Builder
	err := c.tmpl.Execute(&prompt, intentPromptData{
		Categories: strings.Join(c.categories, ", "),
		Question:   query,
	})
	if err != nil {
		c.logger.Warn("intent prompt render failed, using default intent", "error", err)
		return c.defaultIntent
	}

	raw, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt.String())
	if err != nil {
		c.logger.Warn("intent classification failed, using default intent",
			"model", c.modelName, "error", err)
		return c.defaultIntent
	}

	label := strings.TrimSpace(raw)
	if label == "" {
		c.logger.Warn("intent classification returned empty label, using default intent")
		return c.defaultIntent
	}

	if canonical, ok := c.match(label); ok {
		return canonical
	}
	c.logger.Warn("intent label outside category set, using default intent", "label", label)
	return c.defaultIntent
}

// match validates a label against the closed category set, tolerating case
// differences and surrounding punctuation from chatty models.
func (c *IntentClassifier) match(label string) (string, bool) {
	cleaned := strings.ToLower(strings.Trim(label, " .\"'"))
	for _, cat := range c.categories {
		if strings.ToLower(cat) == cleaned {
			return cat, true
		}
	}
	return "", false
}
