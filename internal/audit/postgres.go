// Package audit durably records completed chat turns for later review.
// Recording is best-effort from the pipeline's point of view: failures
// here must never affect the user-facing result.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// Record is one completed turn. Write-once, append-only.
type Record struct {
	SessionID  string
	UserQuery  string
	AIResponse string
	CreatedAt  time.Time
}

// Recorder persists interaction records.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
	Ping(ctx context.Context) error
	Close() error
}

// PostgresRecorder appends records to the chat_interactions table.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to PostgreSQL and ensures the schema.
func NewPostgresRecorder(ctx context.Context, databaseURL string) (*PostgresRecorder, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fault.Wrap(fault.KindInfrastructure, "connect postgres", err)
	}
	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresRecorder{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS chat_interactions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_query TEXT NOT NULL,
			ai_response TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_interactions_session_created
			ON chat_interactions (session_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fault.Wrap(fault.KindInfrastructure, "init audit schema", err)
		}
	}
	return nil
}

var _ Recorder = (*PostgresRecorder)(nil)

// Record appends one interaction row.
func (r *PostgresRecorder) Record(ctx context.Context, rec Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO chat_interactions (id, session_id, user_query, ai_response, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(),
		rec.SessionID,
		rec.UserQuery,
		rec.AIResponse,
		rec.CreatedAt,
	)
	if err != nil {
		return fault.Wrap(fault.KindInfrastructure, "insert interaction", err)
	}
	return nil
}

// Ping verifies sink connectivity, used by startup checks.
func (r *PostgresRecorder) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fault.Wrap(fault.KindInfrastructure, "ping postgres", err)
	}
	return nil
}

func (r *PostgresRecorder) Close() error {
	r.pool.Close()
	return nil
}

// NopRecorder discards records, used when no audit database is configured.
type NopRecorder struct{}

var _ Recorder = NopRecorder{}

func (NopRecorder) Record(ctx context.Context, rec Record) error { return nil }
func (NopRecorder) Ping(ctx context.Context) error               { return nil }
func (NopRecorder) Close() error                                 { return nil }
