package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"garbage", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLogLevel(tt.in); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			MemoryWindowSize:     5,
			SessionTTL:           time.Hour,
			RelevanceThreshold:   0.7,
			SearchK:              5,
			ChunkSize:            1000,
			ChunkOverlap:         150,
			StartupRetryAttempts: 3,
			DefaultIntent:        "General Question",
			AuditQueueSize:       16,
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		if err := valid().Validate(); err != nil {
			t.Fatalf("Validate() = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative window", func(c *Config) { c.MemoryWindowSize = -1 }},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }},
		{"threshold above one", func(c *Config) { c.RelevanceThreshold = 1.5 }},
		{"threshold below zero", func(c *Config) { c.RelevanceThreshold = -0.1 }},
		{"negative k", func(c *Config) { c.SearchK = -2 }},
		{"overlap not below chunk size", func(c *Config) { c.ChunkOverlap = 1000 }},
		{"zero retry attempts", func(c *Config) { c.StartupRetryAttempts = 0 }},
		{"empty default intent", func(c *Config) { c.DefaultIntent = "" }},
		{"zero audit queue", func(c *Config) { c.AuditQueueSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want configuration fault")
			}
			if !fault.IsKind(err, fault.KindConfiguration) {
				t.Errorf("Validate() kind = %q, want %q", fault.KindOf(err), fault.KindConfiguration)
			}
		})
	}
}

func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	t.Setenv("RAG_RELEVANCE_SCORE_THRESHOLD", "0.55")
	t.Setenv("MEMORY_WINDOW_SIZE", "7")
	t.Setenv("REDIS_SESSION_TTL_SECONDS", "120")
	t.Setenv("CHATBOT_CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.RelevanceThreshold != 0.55 {
		t.Errorf("RelevanceThreshold = %g, want 0.55", cfg.RelevanceThreshold)
	}
	if cfg.MemoryWindowSize != 7 {
		t.Errorf("MemoryWindowSize = %d, want 7", cfg.MemoryWindowSize)
	}
	if cfg.SessionTTL != 2*time.Minute {
		t.Errorf("SessionTTL = %s, want 2m", cfg.SessionTTL)
	}
	if cfg.SearchK != 5 {
		t.Errorf("SearchK default = %d, want 5", cfg.SearchK)
	}
	if cfg.SessionKeyPrefix != "chat_session:" {
		t.Errorf("SessionKeyPrefix default = %q", cfg.SessionKeyPrefix)
	}
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "search_k: 9\ndefault_intent: Greeting\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CHATBOT_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.SearchK != 9 {
		t.Errorf("SearchK = %d, want 9 from yaml", cfg.SearchK)
	}
	if cfg.DefaultIntent != "Greeting" {
		t.Errorf("DefaultIntent = %q, want Greeting", cfg.DefaultIntent)
	}
}

func TestLoadRejectsBadConfigFile(t *testing.T) {
	t.Setenv("CHATBOT_CONFIG_FILE", "/nonexistent/config.yaml")
	_, err := Load()
	if !fault.IsKind(err, fault.KindConfiguration) {
		t.Fatalf("Load() error kind = %q, want configuration", fault.KindOf(err))
	}
}
