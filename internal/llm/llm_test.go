package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/config"
	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// fakeModel is an in-process llms.Model for tests.
type fakeModel struct {
	response   string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				f.lastPrompt = text.Text
			}
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.response}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func writeTemplate(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		SystemMessage: "You are a support assistant.",
		ChatModel:     "test-model",
		IntentModel:   "test-intent-model",
		ChatTemplateFile: writeTemplate(t, "chat.tmpl",
			"{{.System}}\n\nHistory:\n{{.History}}\n\nContext:\n{{.Context}}\n\nQuestion: {{.Question}}\nAnswer:"),
		IntentTemplateFile: writeTemplate(t, "intent.tmpl",
			"Classify into one of: {{.Categories}}\nQuestion: {{.Question}}\nCategory:"),
		IntentCategories: []string{"General Question", "Greeting", "Farewell"},
		DefaultIntent:    "General Question",
	}
}

func TestGeneratorRendersAllSections(t *testing.T) {
	cfg := testConfig(t)
	model := &fakeModel{response: "the answer"}

	gen, err := NewGeneratorWithModel(model, cfg, nil)
	if err != nil {
		t.Fatalf("NewGeneratorWithModel: %v", err)
	}

	answer, err := gen.Generate(context.Background(), "how do I reset my password?", "ctx chunk", "Human: hi\nAI: hello")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "the answer" {
		t.Errorf("answer = %q", answer)
	}

	for _, want := range []string{
		"You are a support assistant.",
		"ctx chunk",
		"Human: hi",
		"how do I reset my password?",
	} {
		if !strings.Contains(model.lastPrompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, model.lastPrompt)
		}
	}
}

func TestGeneratorSubstitutesSentinels(t *testing.T) {
	cfg := testConfig(t)
	model := &fakeModel{response: "ok"}

	gen, err := NewGeneratorWithModel(model, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := gen.Generate(context.Background(), "q", "", ""); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(model.lastPrompt, noContextSentinel) {
		t.Errorf("empty context not substituted:\n%s", model.lastPrompt)
	}
	if !strings.Contains(model.lastPrompt, noHistorySentinel) {
		t.Errorf("empty history not substituted:\n%s", model.lastPrompt)
	}
}

func TestGeneratorBackendFailureIsInfrastructure(t *testing.T) {
	cfg := testConfig(t)
	model := &fakeModel{err: errors.New("connection refused")}

	gen, err := NewGeneratorWithModel(model, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = gen.Generate(context.Background(), "q", "c", "h")
	if !fault.IsKind(err, fault.KindInfrastructure) {
		t.Errorf("error kind = %q, want infrastructure", fault.KindOf(err))
	}
}

func TestGeneratorMissingTemplateIsConfiguration(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChatTemplateFile = "/nonexistent/prompt.tmpl"

	_, err := NewGeneratorWithModel(&fakeModel{}, cfg, nil)
	if !fault.IsKind(err, fault.KindConfiguration) {
		t.Errorf("error kind = %q, want configuration", fault.KindOf(err))
	}
}

func TestGeneratorInvalidTemplateIsConfiguration(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChatTemplateFile = writeTemplate(t, "bad.tmpl", "{{.Unclosed")

	_, err := NewGeneratorWithModel(&fakeModel{}, cfg, nil)
	if !fault.IsKind(err, fault.KindConfiguration) {
		t.Errorf("error kind = %q, want configuration", fault.KindOf(err))
	}
}

func TestClassifyValidLabel(t *testing.T) {
	cfg := testConfig(t)
	model := &fakeModel{response: "Greeting"}

	cls, err := NewIntentClassifierWithModel(model, cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := cls.Classify(context.Background(), "hello there"); got != "Greeting" {
		t.Errorf("Classify = %q, want Greeting", got)
	}
	if !strings.Contains(model.lastPrompt, "General Question, Greeting, Farewell") {
		t.Errorf("prompt missing category list:\n%s", model.lastPrompt)
	}
}

func TestClassifyNormalizesLabel(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		raw  string
		want string
	}{
		{"  greeting  ", "Greeting"},
		{"\"Farewell\".", "Farewell"},
		{"GENERAL QUESTION", "General Question"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			cls, err := NewIntentClassifierWithModel(&fakeModel{response: tt.raw}, cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := cls.Classify(context.Background(), "q"); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestClassifyFallsBackToDefault(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"backend error", &fakeModel{err: errors.New("timeout")}},
		{"empty output", &fakeModel{response: "   "}},
		{"label outside set", &fakeModel{response: "Existential Dread"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cls, err := NewIntentClassifierWithModel(tt.model, cfg, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got := cls.Classify(context.Background(), "q"); got != cfg.DefaultIntent {
				t.Errorf("Classify = %q, want default %q", got, cfg.DefaultIntent)
			}
		})
	}
}
