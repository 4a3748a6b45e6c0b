// Package config loads and validates the immutable service configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Config holds all runtime settings. It is constructed once at process
// start and passed by value into every component constructor.
type Config struct {
	// HTTP transport
	BindAddr        string        `yaml:"bind_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Ollama / main LLM
	OllamaHost         string   `yaml:"ollama_host"`
	ChatModel          string   `yaml:"chat_model"`
	SystemMessage      string   `yaml:"system_message"`
	ChatTemplateFile   string   `yaml:"chat_template_file"`
	IntentModel        string   `yaml:"intent_model"`
	IntentTemplateFile string   `yaml:"intent_template_file"`
	IntentCategories   []string `yaml:"intent_categories"`
	DefaultIntent      string   `yaml:"default_intent"`

	// Embeddings
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`

	// Vector index (SurrealDB)
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`

	// Retrieval
	SearchK            int     `yaml:"search_k"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`

	// Ingestion
	DocumentsPath string `yaml:"documents_path"`
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`

	// Session memory (Redis)
	RedisAddr        string        `yaml:"redis_addr"`
	RedisPassword    string        `yaml:"redis_password"`
	RedisDB          int           `yaml:"redis_db"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	SessionKeyPrefix string        `yaml:"session_key_prefix"`
	MemoryWindowSize int           `yaml:"memory_window_size"`

	// Audit sink (PostgreSQL); empty URL disables durable audit.
	DatabaseURL string `yaml:"database_url"`

	// Audit worker queue
	AuditQueueSize int `yaml:"audit_queue_size"`

	// Startup checks
	StartupRetryAttempts int           `yaml:"startup_retry_attempts"`
	StartupRetryDelay    time.Duration `yaml:"startup_retry_delay"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// Metrics
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// Load reads configuration from environment variables, optionally overlaid
// by a YAML file named in CHATBOT_CONFIG_FILE. Environment wins over file,
// file wins over defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:        ":8000",
		ShutdownTimeout: 15 * time.Second,

		OllamaHost:         "http://localhost:11434",
		ChatModel:          "llama3",
		SystemMessage:      "You are an IT support assistant. Help requesters using your knowledge base and the provided documents.",
		ChatTemplateFile:   "./templates/chat_prompt.tmpl",
		IntentModel:        "llama3",
		IntentTemplateFile: "./templates/intent_prompt.tmpl",
		IntentCategories:   []string{"General Question", "Greeting", "Farewell", "Troubleshooting"},
		DefaultIntent:      "General Question",

		EmbeddingModel:     "all-minilm:l6-v2",
		EmbeddingDimension: 384,

		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "chatbot",
		SurrealDBDatabase:  "documents",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",

		SearchK:            5,
		RelevanceThreshold: 0.70,

		DocumentsPath: "./data/md_documents",
		ChunkSize:     1000,
		ChunkOverlap:  150,

		RedisAddr:        "localhost:6379",
		RedisDB:          0,
		SessionTTL:       time.Hour,
		SessionKeyPrefix: "chat_session:",
		MemoryWindowSize: 5,

		AuditQueueSize: 256,

		StartupRetryAttempts: 5,
		StartupRetryDelay:    5 * time.Second,

		LogLevel: slog.LevelInfo,

		MetricsNamespace: "chatbot",
	}

	if path := os.Getenv("CHATBOT_CONFIG_FILE"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	overlayEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fault.Wrap(fault.KindConfiguration, fmt.Sprintf("read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fault.Wrap(fault.KindConfiguration, fmt.Sprintf("parse config file %s", path), err)
	}
	return nil
}

func overlayEnv(cfg *Config) {
	setString(&cfg.BindAddr, "CHATBOT_BIND_ADDR")
	setDuration(&cfg.ShutdownTimeout, "CHATBOT_SHUTDOWN_TIMEOUT")

	setString(&cfg.OllamaHost, "OLLAMA_BASE_URL")
	setString(&cfg.ChatModel, "OLLAMA_MODEL")
	setString(&cfg.SystemMessage, "SYSTEM_MESSAGE")
	setString(&cfg.ChatTemplateFile, "TEMPLATE_FILE_PATH")
	setString(&cfg.IntentModel, "OLLAMA_INTENT_MODEL")
	setString(&cfg.IntentTemplateFile, "INTENT_TEMPLATE_FILE_PATH")
	setString(&cfg.DefaultIntent, "DEFAULT_INTENT")
	if v := os.Getenv("INTENT_CATEGORIES"); v != "" {
		parts := strings.Split(v, ",")
		cats := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				cats = append(cats, p)
			}
		}
		cfg.IntentCategories = cats
	}

	setString(&cfg.EmbeddingModel, "EMBEDDINGS_MODEL_NAME")
	setInt(&cfg.EmbeddingDimension, "EMBEDDINGS_DIMENSION")

	setString(&cfg.SurrealDBURL, "SURREALDB_URL")
	setString(&cfg.SurrealDBNamespace, "SURREALDB_NAMESPACE")
	setString(&cfg.SurrealDBDatabase, "SURREALDB_DATABASE")
	setString(&cfg.SurrealDBUser, "SURREALDB_USER")
	setString(&cfg.SurrealDBPass, "SURREALDB_PASS")

	setInt(&cfg.SearchK, "RAG_SEARCH_K")
	setFloat(&cfg.RelevanceThreshold, "RAG_RELEVANCE_SCORE_THRESHOLD")

	setString(&cfg.DocumentsPath, "MD_DOCUMENTS_PATH")
	setInt(&cfg.ChunkSize, "RAG_CHUNK_SIZE")
	setInt(&cfg.ChunkOverlap, "RAG_CHUNK_OVERLAP")

	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "REDIS_DB")
	if v := os.Getenv("REDIS_SESSION_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.SessionTTL = time.Duration(secs) * time.Second
		}
	}
	setString(&cfg.SessionKeyPrefix, "REDIS_SESSION_PREFIX")
	setInt(&cfg.MemoryWindowSize, "MEMORY_WINDOW_SIZE")

	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setInt(&cfg.AuditQueueSize, "AUDIT_QUEUE_SIZE")

	setInt(&cfg.StartupRetryAttempts, "STARTUP_CHECK_RETRY_ATTEMPTS")
	if v := os.Getenv("STARTUP_CHECK_RETRY_DELAY_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			cfg.StartupRetryDelay = time.Duration(secs) * time.Second
		}
	}

	setString(&cfg.LogFile, "CHATBOT_LOG_FILE")
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}

	setString(&cfg.MetricsNamespace, "CHATBOT_METRICS_NAMESPACE")
}

// Validate checks the invariants the pipeline relies on. Violations are
// configuration faults and abort process bring-up.
func (c Config) Validate() error {
	if c.MemoryWindowSize < 0 {
		return fault.Newf(fault.KindConfiguration, "memory window size must be >= 0, got %d", c.MemoryWindowSize)
	}
	if c.SessionTTL <= 0 {
		return fault.Newf(fault.KindConfiguration, "session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.RelevanceThreshold < 0 || c.RelevanceThreshold > 1 {
		return fault.Newf(fault.KindConfiguration, "relevance threshold must be in [0,1], got %g", c.RelevanceThreshold)
	}
	if c.SearchK < 0 {
		return fault.Newf(fault.KindConfiguration, "search k must be >= 0, got %d", c.SearchK)
	}
	if c.ChunkSize > 0 && c.ChunkOverlap >= c.ChunkSize {
		return fault.Newf(fault.KindConfiguration, "chunk overlap %d must be smaller than chunk size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.StartupRetryAttempts < 1 {
		return fault.Newf(fault.KindConfiguration, "startup retry attempts must be >= 1, got %d", c.StartupRetryAttempts)
	}
	if c.DefaultIntent == "" {
		return fault.New(fault.KindConfiguration, "default intent must not be empty")
	}
	if c.AuditQueueSize < 1 {
		return fault.Newf(fault.KindConfiguration, "audit queue size must be >= 1, got %d", c.AuditQueueSize)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
