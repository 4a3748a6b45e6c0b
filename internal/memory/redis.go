package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/GustavoMota094/complete-local-ai-chatbot/internal/fault"
)

// RedisStore keeps each session's window in a Redis list under a derived
// key. Every save trims the list to the window size and slides the TTL.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	window    int
	ttl       time.Duration
	logger    *slog.Logger
}

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Window    int
	TTL       time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fault.Wrap(fault.KindInfrastructure, "connect redis", err)
	}
	logger.Info("connected to redis", "addr", opts.Addr, "db", opts.DB, "ttl", opts.TTL)
	return &RedisStore{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		window:    opts.Window,
		ttl:       opts.TTL,
		logger:    logger,
	}, nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(sessionID string) string {
	return s.keyPrefix + DeriveKey(sessionID)
}

// Load returns the rendered history window, empty for unknown sessions.
func (s *RedisStore) Load(ctx context.Context, sessionID string) (string, error) {
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return "", fault.Wrap(fault.KindInfrastructure, "load session history", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			// A corrupt entry should not poison the whole window.
			s.logger.Warn("skipping malformed history entry", "session_key", s.key(sessionID), "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return FormatHistory(turns), nil
}

// Save appends a turn, trims to the window and refreshes the TTL.
func (s *RedisStore) Save(ctx context.Context, sessionID, question, answer string) error {
	key := s.key(sessionID)

	if s.window == 0 {
		// A zero window retains nothing but still honors clear semantics.
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fault.Wrap(fault.KindInfrastructure, "save session history", err)
		}
		return nil
	}

	payload, err := json.Marshal(Turn{Question: question, Answer: answer})
	if err != nil {
		return fault.Wrap(fault.KindInfrastructure, "encode turn", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.LTrim(ctx, key, int64(-s.window), -1)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fault.Wrap(fault.KindInfrastructure, "save session history", err)
	}
	return nil
}

// Clear deletes the session's history. Deleting a missing key is a no-op.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fault.Wrap(fault.KindInfrastructure, "clear session history", err)
	}
	return nil
}

// Ping verifies store connectivity, used by startup checks.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fault.Wrap(fault.KindInfrastructure, "ping redis", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
